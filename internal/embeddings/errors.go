package embeddings

import (
	"context"
	"errors"
	"fmt"
	"net"

	openai "github.com/sashabaranov/go-openai"
)

// ServiceError wraps a failure from an embedding service and records
// whether retrying could help. Rate limits, timeouts and server errors are
// retryable; authentication and configuration problems are fatal and abort
// the whole sync run.
type ServiceError struct {
	Op        string
	Err       error
	Retryable bool
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("embeddings: %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a transient embedding failure.
// Errors that are not ServiceErrors are treated as retryable once wrapped
// by classify; a bare unknown error is not.
func IsRetryable(err error) bool {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// classify turns a raw client error into a ServiceError.
func classify(op string, err error) *ServiceError {
	retryable := true

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403:
			retryable = false
		case apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500:
			retryable = true
		default:
			retryable = false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		retryable = netErr.Timeout()
	}

	if errors.Is(err, context.Canceled) {
		retryable = false
	}

	return &ServiceError{Op: op, Err: err, Retryable: retryable}
}
