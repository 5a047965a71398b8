// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package throttle

import (
	"context"
	"fmt"
	"time"
)

// Counter reports how many challenges a key has been issued since a moment
type Counter interface {
	CountChallengesSince(ctx context.Context, key string, since time.Time) (int, error)
}

// Limiter allows at most limit challenges per key in any trailing window.
// It keeps no state of its own. Allow is an early read-only check; the
// binding check is made by the store when it records the challenge, using
// the bounds from Window.
type Limiter struct {
	counter Counter
	limit   int
	window  time.Duration
	now     func() time.Time
}

// New creates a Limiter. A limit below 1 disables throttling.
func New(counter Counter, limit int, window time.Duration) *Limiter {
	return &Limiter{
		counter: counter,
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow reports whether key may be issued another challenge
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit < 1 {
		return true, nil
	}

	n, err := l.counter.CountChallengesSince(ctx, key, l.now().Add(-l.window))
	if err != nil {
		return false, fmt.Errorf("count recent challenges: %w", err)
	}
	return n < l.limit, nil
}

// Window returns the limit and the start of the current trailing window.
// A zero limit means throttling is disabled.
func (l *Limiter) Window() (int, time.Time) {
	if l.limit < 1 {
		return 0, time.Time{}
	}
	return l.limit, l.now().Add(-l.window)
}
