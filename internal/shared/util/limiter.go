package util

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter spaces out repeated work to at most one unit per interval.
type Limiter struct {
	inner *rate.Limiter
}

// NewLimiter allows one event every interval. A non-positive interval
// disables limiting.
func NewLimiter(interval time.Duration) *Limiter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Limiter{inner: rate.NewLimiter(limit, 1)}
}

// Spend consumes the token available now, if any, so the next Wait starts
// a full interval later. Used after work that ran without asking.
func (l *Limiter) Spend() {
	l.inner.Allow()
}

// Allow reports whether one event may happen now and consumes it if so.
func (l *Limiter) Allow() bool {
	return l.inner.Allow()
}

// Wait blocks until one event may happen or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.inner.Wait(ctx)
}
