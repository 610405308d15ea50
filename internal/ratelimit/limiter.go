// Package ratelimit spaces outbound requests of a single source adapter.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket with a burst of one: the first Acquire passes
// immediately, each next one waits for the configured interval.
type Limiter struct {
	interval time.Duration
	clock    Clock
	bucket   *rate.Limiter
}

// New creates a limiter releasing one request per interval. A non-positive
// interval disables waiting.
func New(interval time.Duration, clock Clock) *Limiter {
	if clock == nil {
		clock = RealClock()
	}

	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	return &Limiter{
		interval: interval,
		clock:    clock,
		bucket:   rate.NewLimiter(limit, 1),
	}
}

func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Acquire suspends the caller until a request slot is available or ctx is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := l.clock.Now()
	reservation := l.bucket.ReserveN(now, 1)
	if !reservation.OK() {
		return fmt.Errorf("rate limiter cannot grant a request with interval %s", l.interval)
	}

	delay := reservation.DelayFrom(now)
	if delay <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		reservation.CancelAt(l.clock.Now())
		return ctx.Err()
	case <-l.clock.After(delay):
		return nil
	}
}
