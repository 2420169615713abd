package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/sanzeeb3/mailercloud-go/logger"
)

type expoConfig struct {
	sleep    time.Duration
	maxSleep time.Duration
	logger   logger.Logger
}

func defaultExpoConfig() expoConfig {
	return expoConfig{
		sleep:    50 * time.Millisecond,
		maxSleep: 5 * time.Second,
		logger:   logger.Noop{},
	}
}

type ExpoConfigOption func(c *expoConfig)

func WithLogger(log logger.Logger) ExpoConfigOption {
	return func(c *expoConfig) {
		c.logger = log
	}
}

func WithInitialDuration(d time.Duration) ExpoConfigOption {
	return func(c *expoConfig) {
		c.sleep = d
	}
}

// WithMaxDuration caps the backoff between two attempts.
func WithMaxDuration(d time.Duration) ExpoConfigOption {
	return func(c *expoConfig) {
		c.maxSleep = d
	}
}

type expoRetry struct {
	config expoConfig
}

var _ Retry = &expoRetry{}

func NewExponentialRetry(opts ...ExpoConfigOption) Retry {
	var config = defaultExpoConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &expoRetry{config}
}

// Do runs fn until it returns no error, returns StopNow, attempts is
// reached, or ctx is done. The backoff doubles after every failure:
// Do(ctx, 3, "lists/search", fn) sleeps 50ms, then 100ms.
func (r *expoRetry) Do(
	ctx context.Context,
	attempts int,
	fnName string,
	fn RetriableFn,
) error {
	if attempts < 1 {
		return fmt.Errorf("attempts must be > 0")
	}

	var err error
	sleep := r.config.sleep
	for i := 0; i < attempts; i++ {
		var exitNow ExitStrategy
		if err, exitNow = fn(i); err == nil {
			return nil
		}
		if exitNow || i == attempts-1 {
			break
		}

		r.config.logger.Warnf(
			"Error during %s; retrying. attempt=%d, maxAttempt=%d, backoff=%v, error=%v",
			fnName, i, attempts, sleep, err,
		)

		t := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			t.Stop()
			return err
		case <-t.C:
		}

		sleep = min(sleep*2, r.config.maxSleep)
	}

	if attempts > 1 {
		r.config.logger.Warnf(
			"Giving up on %s. maxAttempt=%d, error=%v",
			fnName, attempts, err,
		)
	}

	return err
}
