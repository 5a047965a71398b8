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

// GetBallotByTokenHash loads a ballot by the digest of its token
func (s *Store) GetBallotByTokenHash(ctx context.Context, tokenHash string) (models.Ballot, error) {
	var (
		b              models.Ballot
		verificationID sql.NullString
		issuedAt       int64
		consumedAt     sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, verification_id, token_hash, issued_at, consumed_at
		FROM ballot
		WHERE token_hash = $1
	`, tokenHash).Scan(&b.ID, &verificationID, &b.TokenHash, &issuedAt, &consumedAt)

	if err == sql.ErrNoRows {
		return models.Ballot{}, ErrNotFound
	}
	if err != nil {
		return models.Ballot{}, fmt.Errorf("query ballot: %w", classify(err))
	}

	b.VerificationID = stringPtr(verificationID)
	b.IssuedAt = fromMillis(issuedAt)
	b.ConsumedAt = timePtr(consumedAt)
	return b, nil
}

// CastBallot consumes a ballot and appends its votes as one unit.
//
// Consumption is a compare-and-swap on consumed_at: only the first caller
// sees the row change and goes on to insert votes; every later caller gets
// ErrConflict. The UNIQUE (ballot_id, position_id) constraint backs this up
// and surfaces as ErrDuplicate. Any failure rolls back both the consumption
// and every vote.
func (s *Store) CastBallot(ctx context.Context, ballotID string, consumedAt time.Time, votes []models.Vote) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cast: %w", classify(err))
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE ballot
		SET consumed_at = $1
		WHERE id = $2 AND consumed_at IS NULL
	`, toMillis(consumedAt), ballotID)
	if err != nil {
		return fmt.Errorf("consume ballot: %w", classify(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("consume ballot: %w", classify(err))
	}
	if n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM ballot WHERE id = $1`, ballotID).Scan(&exists)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("consume ballot: %w", classify(err))
		}
		return ErrConflict
	}

	for _, v := range votes {
		if err := insertVote(ctx, tx, ballotID, v); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cast: %w", classify(err))
	}
	return nil
}

func insertVote(ctx context.Context, tx *sql.Tx, ballotID string, v models.Vote) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO vote (id, ballot_id, position_id, candidate_id, cast_at)
		VALUES ($1, $2, $3, $4, $5)
	`, v.ID, ballotID, v.PositionID, v.CandidateID, toMillis(v.CastAt))
	if err != nil {
		return fmt.Errorf("insert vote for position %s: %w", v.PositionID, classify(err))
	}
	return nil
}

// ListVotes returns the votes recorded on a ballot, oldest first
func (s *Store) ListVotes(ctx context.Context, ballotID string) ([]models.Vote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ballot_id, position_id, candidate_id, cast_at
		FROM vote
		WHERE ballot_id = $1
		ORDER BY cast_at, id
	`, ballotID)
	if err != nil {
		return nil, fmt.Errorf("query votes: %w", classify(err))
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var (
			v      models.Vote
			castAt int64
		)
		if err := rows.Scan(&v.ID, &v.BallotID, &v.PositionID, &v.CandidateID, &castAt); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		v.CastAt = fromMillis(castAt)
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate votes: %w", classify(err))
	}
	return votes, nil
}
