package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ServiceError is a failed call to an external speech, language or asset service.
type ServiceError struct {
	Service    string
	StatusCode int // 0 when no response was received
	Body       string
	Err        error
}

func (e *ServiceError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s %d: %v", e.Service, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %d %s: %s", e.Service, e.StatusCode, http.StatusText(e.StatusCode), strings.TrimSpace(e.Body))
	default:
		return fmt.Sprintf("%s: %v", e.Service, e.Err)
	}
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Retryable reports quota exhaustion, server faults and transport failures.
// Caller cancellation is never retryable.
func (e *ServiceError) Retryable() bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500:
		return true
	case e.StatusCode == 0:
		return e.Err != nil && !errors.Is(e.Err, context.Canceled) && !errors.Is(e.Err, context.DeadlineExceeded)
	}
	return false
}

// IsRetryable unwraps err looking for a retryable ServiceError.
func IsRetryable(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Retryable()
}
