package client

import (
	"context"
	"errors"
	"fmt"
)

const (
	DEFAULT_SUBMIT_ERROR = "Failed to generate script"
	DEFAULT_STATUS_ERROR = "Failed to get job status"
	DEFAULT_PROMO_ERROR  = "Failed to generate promo"
	UNKNOWN_JOB_ERROR    = "Unknown error"
)

var (
	ErrJobNotFound = errors.New("Job not found")
	ErrPollTimeout = errors.New("Timed out waiting for the script")
)

// APIError is a non-2xx answer to a submission or promo request. Detail is
// the server's "detail" field, or the call's default message when it sent none.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return e.Detail
}

// TransportError covers failures to reach the API or to read its answer,
// including non-2xx status responses. These are retried by the poller.
type TransportError struct {
	Msg        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d", e.Msg, e.StatusCode)
	}
	return e.Msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// JobFailedError is returned when the server reports the job as failed.
type JobFailedError struct {
	Reason string
}

func (e *JobFailedError) Error() string {
	if e.Reason == "" {
		return "Failed: " + UNKNOWN_JOB_ERROR
	}
	return "Failed: " + e.Reason
}

// Message maps an error from this package to the status line shown to users.
func Message(err error) string {
	var (
		apiErr       *APIError
		transportErr *TransportError
		failedErr    *JobFailedError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return apiErr.Detail
	case errors.As(err, &failedErr):
		return failedErr.Error()
	case errors.As(err, &transportErr):
		return transportErr.Msg
	case errors.Is(err, context.Canceled):
		return "Cancelled"
	default:
		return err.Error()
	}
}
