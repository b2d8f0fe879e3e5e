package asaas

import (
	"errors"
	"fmt"
)

// NotFoundError reports a 404 from the provider API. The referenced resource
// no longer exists (or never did); callers must not retry.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("asaas: %s %s not found", e.Resource, e.ID)
}

// TransientError reports a timeout, network failure or 5xx response.
// Only this class is retryable.
type TransientError struct {
	StatusCode int
	Err        error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("asaas: transient failure: %v", e.Err)
	}
	return fmt.Sprintf("asaas: transient failure: status=%d", e.StatusCode)
}

func (e *TransientError) Unwrap() error { return e.Err }

// ClientError reports a non-404 4xx response. The request itself is invalid;
// retrying the same call will not help.
type ClientError struct {
	StatusCode int
	Body       string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("asaas: client error: status=%d body=%s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
