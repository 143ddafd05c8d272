package providers

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// Rate limiting defaults, tuned for typical chat-completion endpoints.
const (
	DefaultMaxConcurrent = 3
	DefaultPacingDelay   = 500 * time.Millisecond
)

// RateLimiter bounds simultaneous outbound model calls with a fixed permit
// count and smooths bursts with a fixed pacing delay after each acquisition,
// even when permits are freely available. It is constructed once by the
// process's orchestrator and shared by reference across all call sites; no
// call may bypass it.
type RateLimiter struct {
	sem   *semaphore.Weighted
	delay time.Duration

	held atomic.Int64
}

// NewRateLimiter creates a limiter with the given permit count and pacing
// delay. Non-positive arguments fall back to the defaults.
func NewRateLimiter(maxConcurrent int, delay time.Duration) *RateLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if delay <= 0 {
		delay = DefaultPacingDelay
	}
	return &RateLimiter{
		sem:   semaphore.NewWeighted(int64(maxConcurrent)),
		delay: delay,
	}
}

// Acquire blocks until a permit is available, then waits the pacing delay.
// Every successful Acquire must be paired with Release on all exit paths;
// a leaked permit starves the limiter permanently.
func (r *RateLimiter) Acquire(ctx context.Context) error {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	r.held.Add(1)

	select {
	case <-ctx.Done():
		r.Release()
		return ctx.Err()
	case <-time.After(r.delay):
	}
	return nil
}

// Release returns a permit.
func (r *RateLimiter) Release() {
	r.held.Add(-1)
	r.sem.Release(1)
}

// InFlight reports how many permits are currently held.
func (r *RateLimiter) InFlight() int64 {
	return r.held.Load()
}
