package provider

import (
	"errors"
	"fmt"
)

// Error is the single failure shape for adapter calls. Transport
// failures, non-success HTTP statuses, and malformed response bodies
// all normalize to it.
type Error struct {
	// Provider is the display name of the failing provider.
	Provider string

	// StatusCode is the HTTP status of the failed call, 0 when the
	// failure happened before a response arrived.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// NewError wraps err as a provider failure.
func NewError(providerName string, statusCode int, err error) *Error {
	return &Error{Provider: providerName, StatusCode: statusCode, Err: err}
}

// Errorf builds a provider failure from a format string.
func Errorf(providerName string, statusCode int, format string, args ...any) *Error {
	return &Error{Provider: providerName, StatusCode: statusCode, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %s: HTTP %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts a *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var pe *Error
	ok := errors.As(err, &pe)
	return pe, ok
}
