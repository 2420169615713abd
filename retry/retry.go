package retry

import "context"

// Retry runs a function until it succeeds, asks to stop, runs out of
// attempts, or the context is cancelled.
//
// The api package wraps every Mailercloud request in a Retry. With the
// default of one attempt the request is sent exactly once.
//
// Usage Example:
//
//	r := retry.NewExponentialRetry(
//	    retry.WithInitialDuration(100*time.Millisecond),
//	    retry.WithLogger(myLogger),
//	)
//
//	err := r.Do(ctx, 3, "lists/search", func(attempt int) (error, retry.ExitStrategy) {
//	    err := send()
//	    if err != nil && isTransient(err) {
//	        return err, retry.Continue
//	    }
//	    return err, retry.StopNow
//	})
//
// NOTE: if attempts is 0, the fn is never called.
type Retry interface {
	Do(ctx context.Context, attempts int, fnName string, fn RetriableFn) error
}

// RetriableFn receives the 0-based attempt number.
type RetriableFn func(attempt int) (error, ExitStrategy)

type ExitStrategy bool

var StopNow ExitStrategy = true
var Continue ExitStrategy = false
