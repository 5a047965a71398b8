// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jordancode-cyber/EV-test-app/audit"
	"github.com/Jordancode-cyber/EV-test-app/auth"
	"github.com/Jordancode-cyber/EV-test-app/models"
	"github.com/Jordancode-cyber/EV-test-app/notify"
	"github.com/Jordancode-cyber/EV-test-app/store"
)

var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrNotEligible           = errors.New("voter is not eligible")
	ErrRateLimited           = errors.New("too many verification requests")
	ErrNotFound              = errors.New("challenge not found")
	ErrAlreadyConfirmed      = errors.New("challenge already confirmed")
	ErrInvalidCode           = errors.New("invalid verification code")
	ErrInvalidToken          = errors.New("invalid ballot token")
	ErrTokenAlreadyUsed      = errors.New("ballot token already used")
	ErrPositionNotOpen       = errors.New("position is not open for voting")
	ErrCandidateNotEligible  = errors.New("candidate is not eligible for this position")
	ErrDuplicatePositionVote = errors.New("position already voted on this ballot")
	ErrUnavailable           = errors.New("service temporarily unavailable")
)

// SelectionError pins a business-rule failure to one selection of a batch
type SelectionError struct {
	Index       int
	PositionID  string
	CandidateID string
	Err         error
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("selection %d (position %s, candidate %s): %v", e.Index, e.PositionID, e.CandidateID, e.Err)
}

func (e *SelectionError) Unwrap() error {
	return e.Err
}

// Store is the credential store and vote ledger
type Store interface {
	FindVoterByRegNo(ctx context.Context, regNo string) (models.EligibleVoter, error)
	CreateVerification(ctx context.Context, v models.Verification, limit int, since time.Time) error
	GetVerification(ctx context.Context, id string) (models.Verification, error)
	ReserveAttempt(ctx context.Context, id string, max int) error
	ConfirmVerification(ctx context.Context, verificationID string, verifiedAt time.Time, ballot models.Ballot) error
	GetBallotByTokenHash(ctx context.Context, tokenHash string) (models.Ballot, error)
	CastBallot(ctx context.Context, ballotID string, consumedAt time.Time, votes []models.Vote) error
}

// Catalog is read-only access to positions and candidates
type Catalog interface {
	GetPosition(ctx context.Context, id string) (models.Position, error)
	ListPositionsOpenAt(ctx context.Context, now time.Time) ([]models.Position, error)
	GetCandidate(ctx context.Context, id string) (models.Candidate, error)
	ListApprovedCandidates(ctx context.Context, positionID string) ([]models.Candidate, error)
}

type Notifier interface {
	Send(ctx context.Context, voter models.EligibleVoter, method, code string) error
}

// Throttle bounds how many challenges a voter may request. Allow is a cheap
// early check; Window gives the bounds the store enforces on insert.
type Throttle interface {
	Allow(ctx context.Context, key string) (bool, error)
	Window() (limit int, since time.Time)
}

type AuditSink interface {
	Record(ctx context.Context, e audit.Entry)
}

// Config holds the credential policy
type Config struct {
	CodeTTL         time.Duration // 0 disables code expiry
	BallotTTL       time.Duration // 0 disables token expiry
	MaxCodeAttempts int           // 0 disables lockout
	OpTimeout       time.Duration
}

// Deps are the collaborators of a Service. Store, Catalog and Hasher are
// required; the rest default to no-ops.
type Deps struct {
	Store    Store
	Catalog  Catalog
	Hasher   *auth.Hasher
	Notifier Notifier
	Throttle Throttle
	Audit    AuditSink
	Now      func() time.Time
}

// Service runs the verification, ballot issuance and vote casting pipeline.
// It holds no mutable state; all coordination happens in the Store.
type Service struct {
	cfg      Config
	store    Store
	catalog  Catalog
	hasher   *auth.Hasher
	notifier Notifier
	throttle Throttle
	audit    AuditSink
	now      func() time.Time
}

func NewService(cfg Config, deps Deps) (*Service, error) {
	if deps.Store == nil || deps.Catalog == nil || deps.Hasher == nil {
		return nil, errors.New("voting: store, catalog and hasher are required")
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 5 * time.Second
	}

	s := &Service{
		cfg:      cfg,
		store:    deps.Store,
		catalog:  deps.Catalog,
		hasher:   deps.Hasher,
		notifier: deps.Notifier,
		throttle: deps.Throttle,
		audit:    deps.Audit,
		now:      deps.Now,
	}
	if s.notifier == nil {
		s.notifier = notify.Discard{}
	}
	if s.throttle == nil {
		s.throttle = allowAll{}
	}
	if s.audit == nil {
		s.audit = nopAudit{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

type allowAll struct{}

func (allowAll) Allow(context.Context, string) (bool, error) { return true, nil }

func (allowAll) Window() (int, time.Time) { return 0, time.Time{} }

type nopAudit struct{}

func (nopAudit) Record(context.Context, audit.Entry) {}

// opContext bounds a store operation. Writes are detached from the caller's
// cancellation so an abandoned request still commits or rolls back whole.
func (s *Service) opContext(ctx context.Context, write bool) (context.Context, context.CancelFunc) {
	if write {
		ctx = context.WithoutCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.OpTimeout)
}

// storeFailure wraps an unexpected store error, marking retryable ones
func storeFailure(op string, err error) error {
	if errors.Is(err, store.ErrUnavailable) {
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
