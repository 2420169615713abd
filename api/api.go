package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/sanzeeb3/mailercloud-go/errors"
	"github.com/sanzeeb3/mailercloud-go/logger"
	"github.com/sanzeeb3/mailercloud-go/rate"
	"github.com/sanzeeb3/mailercloud-go/retry"
	"github.com/sanzeeb3/mailercloud-go/types"
)

const (
	BaseUrl = "https://cloudapi.mailercloud.com/v1"
)

type apiClient struct {
	apiKey      string
	baseUrl     string
	httpClient  *http.Client
	logger      logger.Logger
	limiter     rate.Limiter
	retry       retry.Retry
	maxAttempts int
}

// Option tunes the shared request pipeline of an API group.
type Option func(c *apiClient)

func WithBaseUrl(baseUrl string) Option {
	return func(c *apiClient) {
		if baseUrl != "" {
			c.baseUrl = baseUrl
		}
	}
}

func WithLimiter(limiter rate.Limiter) Option {
	return func(c *apiClient) {
		if limiter != nil {
			c.limiter = limiter
		}
	}
}

// WithRetry retries transient failures up to maxAttempts in total.
// maxAttempts below 1 is treated as 1.
func WithRetry(r retry.Retry, maxAttempts int) Option {
	return func(c *apiClient) {
		if r != nil {
			c.retry = r
		}
		c.maxAttempts = max(maxAttempts, 1)
	}
}

func newApiClient(
	apiKey string,
	httpClient *http.Client,
	logger logger.Logger,
	opts ...Option,
) *apiClient {
	if logger == nil {
		logger = loggerNoop
	}
	c := &apiClient{
		apiKey:      apiKey,
		baseUrl:     BaseUrl,
		httpClient:  httpClient,
		logger:      logger,
		limiter:     rate.NoopLimiter{},
		retry:       retry.NewExponentialRetry(retry.WithLogger(logger)),
		maxAttempts: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *apiClient) postJson(ctx context.Context, path string, reqData, resData any) *errors.ApiError {
	return c.sendJson(ctx, http.MethodPost, path, reqData, resData)
}

func (c *apiClient) sendJson(
	ctx context.Context,
	httpMethod string,
	path string,
	reqData any,
	resData any,
) *errors.ApiError {
	var body []byte
	var status int
	var apiErr *errors.ApiError

	_ = c.retry.Do(ctx, c.maxAttempts, path, func(attempt int) (error, retry.ExitStrategy) {
		body, status, apiErr = c.send(ctx, httpMethod, path, reqData)
		if apiErr == nil {
			return nil, retry.StopNow
		}
		return apiErr, retry.ExitStrategy(!apiErr.Retriable())
	})

	if apiErr != nil {
		if len(apiErr.Body) > 0 {
			payload := mailercloudErr{}
			if err := json.Unmarshal(apiErr.Body, &payload); err == nil {
				apiErr.MailercloudCode = types.FirstErrorCode(payload.Errors)
			}
			// Best effort to return some data
			_ = json.Unmarshal(apiErr.Body, resData)
		}
		return apiErr
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, resData); err != nil {
		return &errors.ApiError{
			Stage:          errors.STAGE_AFTER_REQUEST,
			Type:           errors.TYPE_JSON_PARSE,
			SourceErr:      err,
			Body:           body,
			HttpStatusCode: status,
		}
	}

	// Mailercloud may answer 200 with an "errors" block.
	payload := mailercloudErr{}
	if err := json.Unmarshal(body, &payload); err == nil && types.HasErrors(payload.Errors) {
		return &errors.ApiError{
			Stage:           errors.STAGE_AFTER_REQUEST,
			Type:            errors.TYPE_INVALID_DATA,
			Body:            body,
			HttpStatusCode:  status,
			MailercloudCode: types.FirstErrorCode(payload.Errors),
		}
	}
	return nil
}

func (c *apiClient) send(
	ctx context.Context,
	httpMethod string,
	path string,
	reqData any,
) ([]byte, int, *errors.ApiError) {
	endpoint := c.baseUrl + "/" + path

	var reqBody io.Reader
	if reqData != nil {
		data, jsonErr := json.Marshal(reqData)
		if jsonErr != nil {
			return nil, 0, &errors.ApiError{
				Stage:     errors.STAGE_BEFORE_REQUEST,
				Type:      errors.TYPE_JSON_PARSE,
				SourceErr: jsonErr,
			}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, httpMethod, endpoint, reqBody)
	if err != nil {
		return nil, 0, &errors.ApiError{
			Stage:     errors.STAGE_BEFORE_REQUEST,
			Type:      errors.TYPE_REQUEST_PREP,
			SourceErr: err,
		}
	}

	// Mailercloud expects the bare key, no "Bearer" scheme.
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if err := c.limiter.Limit(ctx, req); err != nil {
		return nil, 0, &errors.ApiError{
			Stage:     errors.STAGE_BEFORE_REQUEST,
			Type:      errors.TYPE_RATE_LIMIT,
			SourceErr: err,
		}
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &errors.ApiError{
			Stage:     errors.STAGE_REQUEST,
			Type:      errors.TYPE_IO,
			SourceErr: err,
		}
	}

	var body []byte
	var readErr error
	if res.Body != nil {
		body, readErr = io.ReadAll(res.Body)
		defer func() { _ = res.Body.Close() }()
	}

	c.logger.Debugf("mailercloud: %s %s status=%d", httpMethod, path, res.StatusCode)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return body, res.StatusCode, &errors.ApiError{
			Stage:          errors.STAGE_AFTER_REQUEST,
			Type:           errors.TYPE_HTTP_STATUS,
			Body:           body,
			HttpStatusCode: res.StatusCode,
		}
	}

	if readErr != nil {
		return body, res.StatusCode, &errors.ApiError{
			Stage:          errors.STAGE_AFTER_REQUEST,
			Type:           errors.TYPE_IO,
			Body:           body,
			HttpStatusCode: res.StatusCode,
			SourceErr:      readErr,
		}
	}

	return body, res.StatusCode, nil
}

// toNilErr converts a *errors.ApiError type to be a true nil interface.
// Internally, a Go interface has a Type and Value.
// An interface value is nil only if the V and T are both unset.
// See: https://go.dev/doc/faq#nil_error
func toNilErr[T any](r T, e *errors.ApiError) (T, error) {
	if e != nil {
		return r, e
	}
	return r, nil
}

var loggerNoop logger.Logger = logger.Noop{}

type mailercloudErr struct {
	Errors types.Errors `json:"errors"`
}
