package rate

import (
	"context"
	"net/http"
)

// Limiter paces requests to the Mailercloud API.
//
// Limit is called before each request. It blocks until the request may be
// sent, or returns ctx.Err() if the context ends first. Implementations can
// use the request (method, path) to apply per-endpoint limits.
type Limiter interface {
	Limit(ctx context.Context, req *http.Request) error
}

type NoopLimiter struct {
}

var _ Limiter = &NoopLimiter{}

func (n NoopLimiter) Limit(_ context.Context, _ *http.Request) error {
	return nil
}
