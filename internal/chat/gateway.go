package chat

import (
	"context"
	"encoding/json"
)

// Archive is a full export of durable state: every session plus the raw
// settings entries. The settings payloads are opaque to the store; the
// settings package owns their shape.
type Archive struct {
	Sessions []ChatSession              `json:"sessions"`
	Settings map[string]json.RawMessage `json:"settings"`
}

// Gateway is the persistence contract the store synchronizes against.
// Every operation may fail; the store treats all failures as non-fatal
// and keeps serving from memory — failures are logged, never surfaced.
//
// Implementations must be safe for concurrent use.
type Gateway interface {
	// LoadSessions returns all stored sessions sorted by last activity,
	// most recent first.
	LoadSessions(ctx context.Context) ([]ChatSession, error)

	// SaveSessions replaces the full session set transactionally.
	SaveSessions(ctx context.Context, sessions []ChatSession) error

	// DeleteSession removes the durable record for one session.
	DeleteSession(ctx context.Context, id string) error

	// SaveSetting stores an opaque settings entry under the given key.
	SaveSetting(ctx context.Context, key string, value json.RawMessage) error

	// LoadSetting returns the settings entry for the given key, or nil
	// if no entry exists.
	LoadSetting(ctx context.Context, key string) (json.RawMessage, error)

	// ExportAll returns the complete durable state.
	ExportAll(ctx context.Context) (Archive, error)

	// ImportAll replaces durable state with the archive's contents.
	// An archive with no sessions leaves existing sessions untouched.
	ImportAll(ctx context.Context, archive Archive) error

	// ClearAll removes all sessions and settings.
	ClearAll(ctx context.Context) error
}
