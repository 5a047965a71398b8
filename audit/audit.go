// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Actor types
const (
	ActorUser   = "USER"
	ActorSystem = "SYSTEM"
)

// Actions and their payload keys
const (
	ActionVerificationRequested = "verification_requested" // voter, method
	ActionVerificationFailed    = "verification_failed"    // reason
	ActionVerificationConfirmed = "verification_confirmed" // method
	ActionBallotViewed          = "ballot_viewed"          // positions_returned
	ActionVotesCast             = "votes_cast"             // votes
)

// Entities
const (
	EntityVerification = "Verification"
	EntityBallot       = "Ballot"
)

// Payload is a flat string-keyed map. Values must be JSON-encodable primitives
// or slices of them.
type Payload map[string]any

// Entry is one audit record
type Entry struct {
	ActorType string
	ActorID   string
	Action    string
	Entity    string
	EntityID  string
	Payload   Payload
	CreatedAt time.Time
}

// Sink persists entries
type Sink interface {
	InsertAuditEntry(ctx context.Context, e Entry) error
}

// Recorder queues entries and writes them to a Sink on a background
// goroutine. Record never blocks: when the queue is full the entry is dropped
// with a warning.
type Recorder struct {
	sink    Sink
	timeout time.Duration
	queue   chan Entry
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewRecorder starts a recorder with the given queue size. Each write gets
// its own timeout.
func NewRecorder(sink Sink, buffer int, timeout time.Duration) *Recorder {
	if buffer < 1 {
		buffer = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	r := &Recorder{
		sink:    sink,
		timeout: timeout,
		queue:   make(chan Entry, buffer),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// Record enqueues an entry. The context is not used for the write itself so
// that entries outlive the request that produced them.
func (r *Recorder) Record(_ context.Context, e Entry) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		slog.Warn("audit recorder closed, dropping entry", "action", e.Action)
		return
	}

	select {
	case r.queue <- e:
	default:
		slog.Warn("audit queue full, dropping entry", "action", e.Action, "entity_id", e.EntityID)
	}
}

// Close stops accepting entries and waits for queued ones to be written
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.done
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	<-r.done
}

func (r *Recorder) run() {
	defer close(r.done)

	for e := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		if err := r.sink.InsertAuditEntry(ctx, e); err != nil {
			slog.Error("failed to write audit entry", "action", e.Action, "error", err)
		}
		cancel()
	}
}
