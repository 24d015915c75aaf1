package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable covers transport failures, timeouts and 5xx answers.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized is returned for 401 and 403.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRequestFailed is any other non-2xx answer.
	ErrRequestFailed = errors.New("request failed")
)

// StatusError describes a non-2xx response. It unwraps to one of the
// sentinels above.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	Message string
	kind    error
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

func (e *StatusError) Unwrap() error { return e.kind }

func kindForStatus(status int) error {
	switch {
	case status == 401 || status == 403:
		return ErrUnauthorized
	case status >= 500:
		return ErrUnavailable
	default:
		return ErrRequestFailed
	}
}
