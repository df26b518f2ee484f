package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound = errors.New("session not found")

	// ErrMultiUserModeRequired means the platform has multi-user mode
	// disabled, so per-visitor users cannot be created. Not retryable.
	ErrMultiUserModeRequired = errors.New("multi-user mode is required but not enabled")
)

// APIError marks a response from the platform that came back 2xx but did not
// carry the fields the caller needs. Retrying will not help.
type APIError struct {
	Op     string
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: unexpected platform response: %s", e.Op, e.Detail)
}

// Permanent reports whether err should not be retried: capability errors and
// malformed-response errors stay broken no matter how often they are re-sent.
func Permanent(err error) bool {
	var apiErr *APIError
	return errors.Is(err, ErrMultiUserModeRequired) || errors.As(err, &apiErr)
}
