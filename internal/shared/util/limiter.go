package util

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket used to space out watch-mode re-runs.
type Limiter struct {
	inner *rate.Limiter
}

// NewLimiter allows r events per second with bursts of b.
func NewLimiter(r float64, b int) *Limiter {
	return &Limiter{inner: rate.NewLimiter(rate.Limit(r), b)}
}

// NewIntervalLimiter allows one event per interval. A non-positive interval
// never blocks.
func NewIntervalLimiter(interval time.Duration) *Limiter {
	if interval <= 0 {
		return NewLimiter(float64(rate.Inf), 1)
	}
	return NewLimiter(float64(rate.Every(interval)), 1)
}

func (l *Limiter) Allow(n int) bool {
	return l.inner.AllowN(time.Now(), n)
}

// Wait blocks until n tokens are available or ctx is done.
func (l *Limiter) Wait(ctx context.Context, n int) error {
	return l.inner.WaitN(ctx, n)
}
