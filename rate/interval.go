package rate

import (
	"context"
	"net/http"
	"time"

	xrate "golang.org/x/time/rate"
)

// IntervalLimiter spaces requests at least `interval` apart, across all
// goroutines sharing it. A zero interval does not limit.
type IntervalLimiter struct {
	limiter *xrate.Limiter
}

var _ Limiter = &IntervalLimiter{}

func NewIntervalLimiter(interval time.Duration) *IntervalLimiter {
	return &IntervalLimiter{
		limiter: xrate.NewLimiter(xrate.Every(interval), 1),
	}
}

// Limit blocks until the next slot is free. It fails early when ctx is
// done or its deadline comes before the slot.
func (l *IntervalLimiter) Limit(ctx context.Context, _ *http.Request) error {
	return l.limiter.Wait(ctx)
}
