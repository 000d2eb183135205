package chat

import "errors"

// Sentinel errors for store operations.
var (
	// ErrEmptyMessage indicates a user message whose content is empty
	// after trimming. Rejected before any state mutation.
	ErrEmptyMessage = errors.New("chat: message content is empty")

	// ErrNoActiveSession indicates no session is currently active.
	// Not expected in normal operation: the store guarantees exactly
	// one active session after initialization.
	ErrNoActiveSession = errors.New("chat: no active session")
)
