package mailercloud_go

import (
	"net/http"
	"time"

	"github.com/sanzeeb3/mailercloud-go/api"
	"github.com/sanzeeb3/mailercloud-go/logger"
	"github.com/sanzeeb3/mailercloud-go/rate"
	"github.com/sanzeeb3/mailercloud-go/retry"
)

type config struct {
	// transport specifies the HTTP transport mechanism
	// for making requests.
	// It's useful for mocking or if customers
	// want to add extra logging, headers, etc.
	// default: http.DefaultTransport
	transport http.RoundTripper

	// timeout sets the maximum duration for HTTP requests
	// before they are cancelled
	// default: 10 seconds
	timeout time.Duration

	// logger provides logging functionality for all internal
	// mailercloud-go client operations
	// default: logger.Noop
	logger logger.Logger

	// baseUrl is the API root, without a trailing slash.
	// default: https://cloudapi.mailercloud.com/v1
	baseUrl string

	// limiter is consulted before every request
	// default: rate.NoopLimiter
	limiter rate.Limiter

	// retry and maxAttempts control re-sending of requests that
	// failed with a transient error (network, 408, 429, 5xx).
	// default: exponential backoff, 1 attempt (no retry)
	retry       retry.Retry
	maxAttempts int
}

func defaultConfig() *config {
	return &config{
		transport:   http.DefaultTransport,
		timeout:     10 * time.Second,
		logger:      logger.Noop{},
		baseUrl:     api.BaseUrl,
		limiter:     rate.NoopLimiter{},
		retry:       nil,
		maxAttempts: 1,
	}
}

type ConfigOption func(c *config)

func WithTransport(transport http.RoundTripper) ConfigOption {
	return func(c *config) {
		c.transport = transport
	}
}

func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *config) {
		c.timeout = timeout
	}
}

func WithLogger(logger logger.Logger) ConfigOption {
	return func(c *config) {
		c.logger = logger
	}
}

func WithBaseUrl(baseUrl string) ConfigOption {
	return func(c *config) {
		c.baseUrl = baseUrl
	}
}

func WithRateLimiter(limiter rate.Limiter) ConfigOption {
	return func(c *config) {
		c.limiter = limiter
	}
}

// WithRetry enables re-sending transient failures, up to maxAttempts
// requests in total. A nil r keeps the default exponential backoff.
func WithRetry(r retry.Retry, maxAttempts int) ConfigOption {
	return func(c *config) {
		c.retry = r
		c.maxAttempts = maxAttempts
	}
}
