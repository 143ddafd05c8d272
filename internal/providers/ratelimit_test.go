package providers

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRateLimiterBound(t *testing.T) {
	limiter := NewRateLimiter(3, time.Millisecond)

	var (
		active  atomic.Int64
		maxSeen atomic.Int64
		wg      sync.WaitGroup
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			defer limiter.Release()

			n := active.Add(1)
			for {
				seen := maxSeen.Load()
				if n <= seen || maxSeen.CompareAndSwap(seen, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()

	if got := maxSeen.Load(); got > 3 {
		t.Errorf("max concurrent holders = %d, want <= 3", got)
	}
	if got := limiter.InFlight(); got != 0 {
		t.Errorf("InFlight after drain = %d, want 0", got)
	}
}

func TestRateLimiterReleaseOnCancel(t *testing.T) {
	limiter := NewRateLimiter(1, 50*time.Millisecond)

	// Hold the only permit so the next Acquire blocks.
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- limiter.Acquire(ctx)
	}()
	cancel()

	if err := <-errCh; err == nil {
		t.Fatal("Acquire() on cancelled context should fail")
	}

	// The cancelled waiter must not have consumed the permit.
	limiter.Release()
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	limiter.Release()
}

func TestRateLimiterPacingOnCancelledDelay(t *testing.T) {
	limiter := NewRateLimiter(1, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// Cancellation during the pacing delay must return the permit.
	if err := limiter.Acquire(ctx); err == nil {
		t.Fatal("Acquire() should fail when cancelled during pacing delay")
	}
	if got := limiter.InFlight(); got != 0 {
		t.Errorf("InFlight = %d, want 0 (permit leaked)", got)
	}
}
