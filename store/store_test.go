// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jordancode-cyber/EV-test-app/audit"
	"github.com/Jordancode-cyber/EV-test-app/auth"
	"github.com/Jordancode-cyber/EV-test-app/models"
	"github.com/Jordancode-cyber/EV-test-app/testutil"
)

type fixture struct {
	db        *sql.DB
	store     *Store
	voterID   string
	position  string
	candidate string
}

func setup(t *testing.T) fixture {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	positionID := testutil.CreateOpenPosition(t, conn, "President")
	return fixture{
		db:        conn,
		store:     New(conn),
		voterID:   testutil.CreateTestVoter(t, conn, "REG001", models.VoterEligible),
		position:  positionID,
		candidate: testutil.CreateTestCandidate(t, conn, positionID, "Alice", models.CandidateApproved),
	}
}

// issueBallot creates a verification and confirms it, returning the ballot
func (f fixture) issueBallot(t *testing.T) models.Ballot {
	t.Helper()
	ctx := context.Background()

	v := models.Verification{
		ID:       auth.GenerateID(),
		VoterID:  f.voterID,
		Method:   models.MethodEmail,
		OTPHash:  "otp-digest",
		IssuedAt: time.Now(),
	}
	require.NoError(t, f.store.CreateVerification(ctx, v, 0, time.Time{}))

	b := models.Ballot{
		ID:        auth.GenerateID(),
		TokenHash: "token-digest-" + v.ID,
		IssuedAt:  time.Now(),
	}
	require.NoError(t, f.store.ConfirmVerification(ctx, v.ID, time.Now(), b))
	return b
}

func vote(positionID, candidateID string) models.Vote {
	return models.Vote{
		ID:          auth.GenerateID(),
		PositionID:  positionID,
		CandidateID: candidateID,
		CastAt:      time.Now(),
	}
}

func TestFindVoterByRegNo(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	v, err := f.store.FindVoterByRegNo(ctx, "REG001")
	require.NoError(t, err)
	assert.Equal(t, f.voterID, v.ID)
	assert.Equal(t, models.VoterEligible, v.Status)
	require.NotNil(t, v.Email)
	assert.Equal(t, "REG001@students.example.edu", *v.Email)
	assert.Nil(t, v.Phone)

	_, err = f.store.FindVoterByRegNo(ctx, "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVerificationLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ipHash := "abcd"
	v := models.Verification{
		ID:       auth.GenerateID(),
		VoterID:  f.voterID,
		Method:   models.MethodSMS,
		OTPHash:  "otp-digest",
		IssuedAt: time.Now(),
		IPHash:   &ipHash,
	}
	require.NoError(t, f.store.CreateVerification(ctx, v, 0, time.Time{}))

	got, err := f.store.GetVerification(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "otp-digest", got.OTPHash)
	assert.Nil(t, got.VerifiedAt)
	assert.Nil(t, got.BallotTokenHash)
	assert.Equal(t, 0, got.FailedAttempts)
	require.NotNil(t, got.IPHash)
	assert.Equal(t, ipHash, *got.IPHash)
	assert.Equal(t, v.IssuedAt.UnixMilli(), got.IssuedAt.UnixMilli())

	require.NoError(t, f.store.ReserveAttempt(ctx, v.ID, 5))
	require.NoError(t, f.store.ReserveAttempt(ctx, v.ID, 5))
	got, err = f.store.GetVerification(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.FailedAttempts)

	b := models.Ballot{ID: auth.GenerateID(), TokenHash: "token-digest", IssuedAt: time.Now()}
	require.NoError(t, f.store.ConfirmVerification(ctx, v.ID, time.Now(), b))

	got, err = f.store.GetVerification(ctx, v.ID)
	require.NoError(t, err)
	require.NotNil(t, got.VerifiedAt)
	require.NotNil(t, got.BallotTokenHash)
	assert.Equal(t, "token-digest", *got.BallotTokenHash)

	// The attempt spent on the matching code is released on confirmation,
	// and a confirmed challenge accepts no further attempts
	assert.Equal(t, 1, got.FailedAttempts)
	assert.ErrorIs(t, f.store.ReserveAttempt(ctx, v.ID, 5), ErrConflict)
	got, err = f.store.GetVerification(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.FailedAttempts)

	ballot, err := f.store.GetBallotByTokenHash(ctx, "token-digest")
	require.NoError(t, err)
	assert.Equal(t, b.ID, ballot.ID)
	require.NotNil(t, ballot.VerificationID)
	assert.Equal(t, v.ID, *ballot.VerificationID)
	assert.Nil(t, ballot.ConsumedAt)

	_, err = f.store.GetVerification(ctx, auth.GenerateID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfirmVerification_Conflict(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	v := models.Verification{ID: auth.GenerateID(), VoterID: f.voterID, Method: models.MethodEmail, OTPHash: "h", IssuedAt: time.Now()}
	require.NoError(t, f.store.CreateVerification(ctx, v, 0, time.Time{}))

	first := models.Ballot{ID: auth.GenerateID(), TokenHash: "first", IssuedAt: time.Now()}
	require.NoError(t, f.store.ConfirmVerification(ctx, v.ID, time.Now(), first))

	second := models.Ballot{ID: auth.GenerateID(), TokenHash: "second", IssuedAt: time.Now()}
	err := f.store.ConfirmVerification(ctx, v.ID, time.Now(), second)
	assert.ErrorIs(t, err, ErrConflict)

	assert.Equal(t, 1, testutil.CountRows(t, f.db, "ballot"))
	_, err = f.store.GetBallotByTokenHash(ctx, "second")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfirmVerification_NotFound(t *testing.T) {
	f := setup(t)

	b := models.Ballot{ID: auth.GenerateID(), TokenHash: "x", IssuedAt: time.Now()}
	err := f.store.ConfirmVerification(context.Background(), auth.GenerateID(), time.Now(), b)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, testutil.CountRows(t, f.db, "ballot"))
}

func TestConfirmVerification_RollsBackOnBallotFailure(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	existing := f.issueBallot(t)

	v := models.Verification{ID: auth.GenerateID(), VoterID: f.voterID, Method: models.MethodEmail, OTPHash: "h", IssuedAt: time.Now()}
	require.NoError(t, f.store.CreateVerification(ctx, v, 0, time.Time{}))

	// Reusing a token digest violates ballot.token_hash UNIQUE after the
	// verification row was already updated.
	clash := models.Ballot{ID: auth.GenerateID(), TokenHash: existing.TokenHash, IssuedAt: time.Now()}
	err := f.store.ConfirmVerification(ctx, v.ID, time.Now(), clash)
	require.ErrorIs(t, err, ErrDuplicate)

	got, err := f.store.GetVerification(ctx, v.ID)
	require.NoError(t, err)
	assert.Nil(t, got.VerifiedAt, "verification must stay unconfirmed")
	assert.Nil(t, got.BallotTokenHash)
	assert.Equal(t, 1, testutil.CountRows(t, f.db, "ballot"))
}

func TestCastBallot(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	b := f.issueBallot(t)

	v := vote(f.position, f.candidate)
	require.NoError(t, f.store.CastBallot(ctx, b.ID, time.Now(), []models.Vote{v}))

	got, err := f.store.GetBallotByTokenHash(ctx, b.TokenHash)
	require.NoError(t, err)
	assert.NotNil(t, got.ConsumedAt)

	votes, err := f.store.ListVotes(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, v.ID, votes[0].ID)
	assert.Equal(t, b.ID, votes[0].BallotID)
	assert.Equal(t, f.candidate, votes[0].CandidateID)
}

func TestCastBallot_SecondCastConflicts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	b := f.issueBallot(t)

	require.NoError(t, f.store.CastBallot(ctx, b.ID, time.Now(), []models.Vote{vote(f.position, f.candidate)}))

	err := f.store.CastBallot(ctx, b.ID, time.Now(), []models.Vote{vote(f.position, f.candidate)})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, testutil.CountRows(t, f.db, "vote"))
}

func TestCastBallot_NotFound(t *testing.T) {
	f := setup(t)

	err := f.store.CastBallot(context.Background(), auth.GenerateID(), time.Now(), []models.Vote{vote(f.position, f.candidate)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCastBallot_UniqueBackstopRollsBack(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	b := f.issueBallot(t)

	// Two votes for one position pass the CAS but trip UNIQUE (ballot_id, position_id)
	votes := []models.Vote{vote(f.position, f.candidate), vote(f.position, f.candidate)}
	err := f.store.CastBallot(ctx, b.ID, time.Now(), votes)
	require.ErrorIs(t, err, ErrDuplicate)

	got, err := f.store.GetBallotByTokenHash(ctx, b.TokenHash)
	require.NoError(t, err)
	assert.Nil(t, got.ConsumedAt, "consumption must roll back with the votes")
	assert.Equal(t, 0, testutil.CountRows(t, f.db, "vote"))
}

func TestCountChallengesSince(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	now := time.Now()

	for _, age := range []time.Duration{2 * time.Hour, 30 * time.Minute, time.Minute} {
		v := models.Verification{ID: auth.GenerateID(), VoterID: f.voterID, Method: models.MethodEmail, OTPHash: "h", IssuedAt: now.Add(-age)}
		require.NoError(t, f.store.CreateVerification(ctx, v, 0, time.Time{}))
	}

	n, err := f.store.CountChallengesSince(ctx, f.voterID, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = f.store.CountChallengesSince(ctx, auth.GenerateID(), now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCreateVerification_Limit(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	now := time.Now()

	challenge := func(age time.Duration) models.Verification {
		return models.Verification{ID: auth.GenerateID(), VoterID: f.voterID, Method: models.MethodInApp, OTPHash: "h", IssuedAt: now.Add(-age)}
	}

	// One stale challenge falls outside the window
	require.NoError(t, f.store.CreateVerification(ctx, challenge(2*time.Hour), 0, time.Time{}))
	for i := 0; i < 3; i++ {
		require.NoError(t, f.store.CreateVerification(ctx, challenge(0), 3, now.Add(-time.Hour)))
	}

	err := f.store.CreateVerification(ctx, challenge(0), 3, now.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.Equal(t, 4, testutil.CountRows(t, f.db, "verification"))

	other := models.Verification{ID: auth.GenerateID(), VoterID: auth.GenerateID(), Method: models.MethodInApp, OTPHash: "h", IssuedAt: now}
	assert.ErrorIs(t, f.store.CreateVerification(ctx, other, 3, now.Add(-time.Hour)), ErrNotFound)
}

func TestReserveAttempt(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	v := models.Verification{ID: auth.GenerateID(), VoterID: f.voterID, Method: models.MethodEmail, OTPHash: "h", IssuedAt: time.Now()}
	require.NoError(t, f.store.CreateVerification(ctx, v, 0, time.Time{}))

	for i := 0; i < 3; i++ {
		require.NoError(t, f.store.ReserveAttempt(ctx, v.ID, 3))
	}
	assert.ErrorIs(t, f.store.ReserveAttempt(ctx, v.ID, 3), ErrLimitExceeded)

	got, err := f.store.GetVerification(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.FailedAttempts, "a refused reservation must not count")

	// No cap
	require.NoError(t, f.store.ReserveAttempt(ctx, v.ID, 0))

	assert.ErrorIs(t, f.store.ReserveAttempt(ctx, auth.GenerateID(), 3), ErrNotFound)
}

func TestCatalog(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	now := time.Now()

	closed := testutil.CreateTestPosition(t, f.db, "Treasurer", now.Add(-48*time.Hour), now.Add(-24*time.Hour))
	upcoming := testutil.CreateTestPosition(t, f.db, "Secretary", now.Add(24*time.Hour), now.Add(48*time.Hour))
	testutil.CreateTestCandidate(t, f.db, f.position, "Zed", models.CandidateApproved)
	testutil.CreateTestCandidate(t, f.db, f.position, "Bob", models.CandidateRejected)
	testutil.CreateTestCandidate(t, f.db, f.position, "Carol", models.CandidateSubmitted)

	open, err := f.store.ListPositionsOpenAt(ctx, now)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, f.position, open[0].ID)

	p, err := f.store.GetPosition(ctx, closed)
	require.NoError(t, err)
	assert.Equal(t, "Treasurer", p.Name)
	assert.True(t, p.ClosesAt.Before(now))

	_, err = f.store.GetPosition(ctx, upcoming)
	require.NoError(t, err)
	_, err = f.store.GetPosition(ctx, auth.GenerateID())
	assert.ErrorIs(t, err, ErrNotFound)

	candidates, err := f.store.ListApprovedCandidates(ctx, f.position)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "Alice", candidates[0].Name)
	assert.Equal(t, "Zed", candidates[1].Name)

	c, err := f.store.GetCandidate(ctx, f.candidate)
	require.NoError(t, err)
	assert.Equal(t, f.position, c.PositionID)
	_, err = f.store.GetCandidate(ctx, auth.GenerateID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeed_Idempotent(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	s := New(conn)
	ctx := context.Background()

	fixtures := `{
		"voters": [
			{"id": "11111111-1111-1111-1111-111111111111", "reg_no": "S100", "name": "Ada", "email": "ada@example.edu", "status": "ELIGIBLE"},
			{"id": "22222222-2222-2222-2222-222222222222", "reg_no": "S200", "name": "Ben", "status": "BLOCKED"}
		],
		"positions": [
			{"id": "pos-president", "name": "President", "seats": 1,
			 "opens_at": "2025-01-01T00:00:00Z", "closes_at": "2035-01-01T00:00:00Z"}
		],
		"candidates": [
			{"id": "cand-ada", "position_id": "pos-president", "name": "Ada", "status": "APPROVED"}
		]
	}`

	data, err := s.Seed(ctx, strings.NewReader(fixtures))
	require.NoError(t, err)
	assert.Len(t, data.Voters, 2)

	_, err = s.Seed(ctx, strings.NewReader(fixtures))
	require.NoError(t, err)

	assert.Equal(t, 2, testutil.CountRows(t, conn, "eligible_voter"))
	assert.Equal(t, 1, testutil.CountRows(t, conn, "election_position"))
	assert.Equal(t, 1, testutil.CountRows(t, conn, "candidate"))

	v, err := s.FindVoterByRegNo(ctx, "S200")
	require.NoError(t, err)
	assert.Equal(t, models.VoterBlocked, v.Status)

	_, err = s.Seed(ctx, strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestAuditLog(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	e := audit.Entry{
		ActorType: audit.ActorUser,
		ActorID:   f.voterID,
		Action:    audit.ActionVotesCast,
		Entity:    audit.EntityBallot,
		EntityID:  "ballot-1",
		Payload:   audit.Payload{"votes": []string{"a", "b"}},
		CreatedAt: time.Now(),
	}
	require.NoError(t, f.store.InsertAuditEntry(ctx, e))
	require.NoError(t, f.store.InsertAuditEntry(ctx, audit.Entry{
		ActorType: audit.ActorSystem,
		Action:    audit.ActionBallotViewed,
		Entity:    audit.EntityBallot,
		CreatedAt: time.Now(),
	}))

	entries, err := f.store.ListAudit(ctx, audit.ActionVotesCast)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, f.voterID, entries[0].ActorID)
	assert.Equal(t, "ballot-1", entries[0].EntityID)
	assert.Equal(t, []any{"a", "b"}, entries[0].Payload["votes"])

	viewed, err := f.store.ListAudit(ctx, audit.ActionBallotViewed)
	require.NoError(t, err)
	require.Len(t, viewed, 1)
	assert.Empty(t, viewed[0].ActorID)
	assert.Empty(t, viewed[0].Payload)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))
	assert.ErrorIs(t, classify(context.DeadlineExceeded), ErrUnavailable)
	assert.ErrorIs(t, classify(context.DeadlineExceeded), context.DeadlineExceeded)
	assert.ErrorIs(t, classify(sql.ErrConnDone), ErrUnavailable)

	plain := sql.ErrNoRows
	assert.Equal(t, plain, classify(plain))
}

func TestOperationsHonourDeadline(t *testing.T) {
	f := setup(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := f.store.FindVoterByRegNo(ctx, "REG001")
	assert.ErrorIs(t, err, ErrUnavailable)
}
