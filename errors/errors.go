package errors

import (
	"errors"
	"fmt"
)

const (
	STAGE_BEFORE_REQUEST = "before-request"
	STAGE_REQUEST        = "request"
	STAGE_AFTER_REQUEST  = "after-request"

	TYPE_UNKNOWN      = "unknown"
	TYPE_JSON_PARSE   = "json"
	TYPE_REQUEST_PREP = "request-prep"
	TYPE_RATE_LIMIT   = "rate-limit"
	TYPE_IO           = "io"
	TYPE_HTTP_STATUS  = "not-ok-http-status"
	TYPE_INVALID_DATA = "invalid-data"
)

// ApiError describes a failed call to the Mailercloud API.
// Stage tells whether the request ever left the process.
type ApiError struct {
	Stage          string
	Type           string
	SourceErr      error
	Body           []byte
	HttpStatusCode int

	// MailercloudCode is the first error code found in the
	// "errors" block of the response body, if any.
	MailercloudCode string
}

var _ error = &ApiError{}

func (e *ApiError) Error() string {
	var err string
	if e.SourceErr != nil {
		err = e.SourceErr.Error()
	} else {
		err = string(e.Body)
	}
	return fmt.Sprintf(
		"http request to Mailercloud failed during '%s' stage with error type '%s', httpStatus: '%d'; original err: %v",
		e.Stage, e.Type, e.HttpStatusCode, err,
	)
}

func (e *ApiError) Unwrap() error {
	return e.SourceErr
}

// Is method is required by errors.Is() to properly distinguish between
// different types -vs- same pointer to the same type.
func (e *ApiError) Is(other error) bool {
	var err *ApiError
	return errors.As(other, &err) && err != nil
}

// Retriable reports whether sending the same request again might succeed:
// the request never got a response, timed out, was rate limited,
// or hit a server error.
func (e *ApiError) Retriable() bool {
	if e.Stage == STAGE_BEFORE_REQUEST {
		return false
	}
	status := e.HttpStatusCode
	return status == 0 || // Request was not sent or context timed out
		status == 408 || // Client Request Timeout
		status == 429 || // Rate limited
		status >= 500 // Any server error
}
