// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Jordancode-cyber/EV-test-app/models"
)

// FindVoterByRegNo loads a voter by registration number
func (s *Store) FindVoterByRegNo(ctx context.Context, regNo string) (models.EligibleVoter, error) {
	var (
		v         models.EligibleVoter
		email     sql.NullString
		phone     sql.NullString
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, reg_no, name, email, phone, program, status, created_at
		FROM eligible_voter
		WHERE reg_no = $1
	`, regNo).Scan(&v.ID, &v.RegNo, &v.Name, &email, &phone, &v.Program, &v.Status, &createdAt)

	if err == sql.ErrNoRows {
		return models.EligibleVoter{}, ErrNotFound
	}
	if err != nil {
		return models.EligibleVoter{}, fmt.Errorf("query voter: %w", classify(err))
	}

	v.Email = stringPtr(email)
	v.Phone = stringPtr(phone)
	v.CreatedAt = fromMillis(createdAt)
	return v, nil
}

// CreateVerification inserts a new challenge. Only the code digest is stored.
//
// When limit is positive the insert only happens while the voter has fewer
// than limit challenges issued at or after since; otherwise it returns
// ErrLimitExceeded. The count and the insert run in one transaction holding
// the voter row, so concurrent requests for one voter are serialized.
func (s *Store) CreateVerification(ctx context.Context, v models.Verification, limit int, since time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create verification: %w", classify(err))
	}
	defer tx.Rollback()

	if limit > 0 {
		// Row lock on PostgreSQL; SQLite already holds the write lock
		// from BEGIN IMMEDIATE.
		res, err := tx.ExecContext(ctx, `UPDATE eligible_voter SET status = status WHERE id = $1`, v.VoterID)
		if err != nil {
			return fmt.Errorf("lock voter: %w", classify(err))
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("lock voter: %w", classify(err))
		} else if n == 0 {
			return ErrNotFound
		}

		var issued int
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM verification
			WHERE voter_id = $1 AND issued_at >= $2
		`, v.VoterID, toMillis(since)).Scan(&issued)
		if err != nil {
			return fmt.Errorf("count challenges: %w", classify(err))
		}
		if issued >= limit {
			return ErrLimitExceeded
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO verification (id, voter_id, method, otp_hash, issued_at, failed_attempts, ip_hash)
		VALUES ($1, $2, $3, $4, $5, 0, $6)
	`, v.ID, v.VoterID, v.Method, v.OTPHash, toMillis(v.IssuedAt), nullString(v.IPHash))
	if err != nil {
		return fmt.Errorf("insert verification: %w", classify(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit verification: %w", classify(err))
	}
	return nil
}

// GetVerification loads a challenge by ID
func (s *Store) GetVerification(ctx context.Context, id string) (models.Verification, error) {
	var (
		v          models.Verification
		issuedAt   int64
		verifiedAt sql.NullInt64
		tokenHash  sql.NullString
		ipHash     sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, voter_id, method, otp_hash, issued_at, verified_at, ballot_token_hash, failed_attempts, ip_hash
		FROM verification
		WHERE id = $1
	`, id).Scan(&v.ID, &v.VoterID, &v.Method, &v.OTPHash, &issuedAt, &verifiedAt, &tokenHash, &v.FailedAttempts, &ipHash)

	if err == sql.ErrNoRows {
		return models.Verification{}, ErrNotFound
	}
	if err != nil {
		return models.Verification{}, fmt.Errorf("query verification: %w", classify(err))
	}

	v.IssuedAt = fromMillis(issuedAt)
	v.VerifiedAt = timePtr(verifiedAt)
	v.BallotTokenHash = stringPtr(tokenHash)
	v.IPHash = stringPtr(ipHash)
	return v, nil
}

// ReserveAttempt spends one code attempt on an unconfirmed challenge before
// the code is compared. The increment only applies while fewer than max
// attempts have been spent (max below 1 means no cap), so concurrent guesses
// can never compare more than max codes. Returns ErrNotFound for a missing
// challenge, ErrConflict once it is confirmed, and ErrLimitExceeded when the
// attempts are used up.
func (s *Store) ReserveAttempt(ctx context.Context, id string, max int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE verification
		SET failed_attempts = failed_attempts + 1
		WHERE id = $1 AND verified_at IS NULL AND ($2 < 1 OR failed_attempts < $2)
	`, id, max)
	if err != nil {
		return fmt.Errorf("reserve attempt: %w", classify(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reserve attempt: %w", classify(err))
	}
	if n == 1 {
		return nil
	}

	var verifiedAt sql.NullInt64
	err = s.db.QueryRowContext(ctx, `SELECT verified_at FROM verification WHERE id = $1`, id).Scan(&verifiedAt)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reserve attempt: %w", classify(err))
	}
	if verifiedAt.Valid {
		return ErrConflict
	}
	return ErrLimitExceeded
}

// CountChallengesSince counts challenges issued to a voter at or after since
func (s *Store) CountChallengesSince(ctx context.Context, voterID string, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM verification
		WHERE voter_id = $1 AND issued_at >= $2
	`, voterID, toMillis(since)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count challenges: %w", classify(err))
	}
	return n, nil
}

// ConfirmVerification marks a challenge confirmed and issues its ballot in
// one transaction. The attempt reserved for the matching code is released. The update only applies while verified_at is unset, so of
// two racing confirmations exactly one creates a ballot; the other gets
// ErrConflict. A missing challenge yields ErrNotFound.
func (s *Store) ConfirmVerification(ctx context.Context, verificationID string, verifiedAt time.Time, ballot models.Ballot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin confirm: %w", classify(err))
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE verification
		SET verified_at = $1, ballot_token_hash = $2,
			failed_attempts = CASE WHEN failed_attempts > 0 THEN failed_attempts - 1 ELSE 0 END
		WHERE id = $3 AND verified_at IS NULL
	`, toMillis(verifiedAt), ballot.TokenHash, verificationID)
	if err != nil {
		return fmt.Errorf("confirm verification: %w", classify(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("confirm verification: %w", classify(err))
	}
	if n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM verification WHERE id = $1`, verificationID).Scan(&exists)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("confirm verification: %w", classify(err))
		}
		return ErrConflict
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ballot (id, verification_id, token_hash, issued_at)
		VALUES ($1, $2, $3, $4)
	`, ballot.ID, verificationID, ballot.TokenHash, toMillis(ballot.IssuedAt))
	if err != nil {
		return fmt.Errorf("insert ballot: %w", classify(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit confirm: %w", classify(err))
	}
	return nil
}
