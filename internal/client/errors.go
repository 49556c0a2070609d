package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// The backend signals failure on two channels: transport-level (non-2xx
// status) and application-level (2xx body carrying an error marker). Both are
// represented here as distinct types, alongside plain request failures and
// bodies that decode into neither shape.

// RequestError indicates the request never produced a usable response:
// connection refused, DNS failure, or the client-side timeout firing.
type RequestError struct {
	URL string
	Err error
}

func (e *RequestError) Error() string {
	if e.Timeout() {
		return fmt.Sprintf("request to %s timed out", e.URL)
	}
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was the client-side deadline firing.
// On the wire this is indistinguishable from a network failure; the
// distinction exists only locally.
func (e *RequestError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// StatusError indicates a response with a non-success status code.
type StatusError struct {
	Status int

	// RetryAfter is the parsed Retry-After header in seconds, zero when absent.
	RetryAfter int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned HTTP %d (%s)", e.Status, http.StatusText(e.Status))
}

// BackendError indicates a success status whose body carried the backend's
// in-band error marker instead of a node array.
type BackendError struct {
	Message string
	Details string
}

func (e *BackendError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("backend error: %s: %s", e.Message, e.Details)
	}
	return fmt.Sprintf("backend error: %s", e.Message)
}

// DecodeError indicates a success status whose body is neither a node array
// nor an error envelope.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed backend response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
