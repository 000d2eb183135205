// Package storage provides an in-memory implementation of the chat
// persistence gateway. It backs tests and runs without a storage module
// configured; modules/storage/sqlite provides the durable implementation.
package storage

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/parleychat/parley/internal/chat"
)

// MemoryGateway is a thread-safe, in-memory chat.Gateway.
type MemoryGateway struct {
	mu       sync.RWMutex
	sessions []chat.ChatSession
	settings map[string]json.RawMessage
}

// NewMemoryGateway creates an empty in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{settings: make(map[string]json.RawMessage)}
}

// Compile-time interface check.
var _ chat.Gateway = (*MemoryGateway)(nil)

// LoadSessions returns all sessions sorted by last activity descending.
func (g *MemoryGateway) LoadSessions(_ context.Context) ([]chat.ChatSession, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make([]chat.ChatSession, len(g.sessions))
	for i := range g.sessions {
		result[i] = g.sessions[i].Clone()
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].LastActivity.After(result[j].LastActivity)
	})
	return result, nil
}

// SaveSessions replaces the stored session set.
func (g *MemoryGateway) SaveSessions(_ context.Context, sessions []chat.ChatSession) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.sessions = make([]chat.ChatSession, len(sessions))
	for i := range sessions {
		g.sessions[i] = sessions[i].Clone()
	}
	return nil
}

// DeleteSession removes one session record. Unknown IDs are a no-op.
func (g *MemoryGateway) DeleteSession(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := range g.sessions {
		if g.sessions[i].ID == id {
			g.sessions = append(g.sessions[:i], g.sessions[i+1:]...)
			return nil
		}
	}
	return nil
}

// SaveSetting stores a settings entry.
func (g *MemoryGateway) SaveSetting(_ context.Context, key string, value json.RawMessage) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.settings[key] = append(json.RawMessage(nil), value...)
	return nil
}

// LoadSetting returns a settings entry, or nil when absent.
func (g *MemoryGateway) LoadSetting(_ context.Context, key string) (json.RawMessage, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	value, ok := g.settings[key]
	if !ok {
		return nil, nil
	}
	return append(json.RawMessage(nil), value...), nil
}

// ExportAll returns the full archive.
func (g *MemoryGateway) ExportAll(ctx context.Context) (chat.Archive, error) {
	sessions, err := g.LoadSessions(ctx)
	if err != nil {
		return chat.Archive{}, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	settings := make(map[string]json.RawMessage, len(g.settings))
	for k, v := range g.settings {
		settings[k] = append(json.RawMessage(nil), v...)
	}
	return chat.Archive{Sessions: sessions, Settings: settings}, nil
}

// ImportAll replaces stored state with the archive's contents.
func (g *MemoryGateway) ImportAll(ctx context.Context, archive chat.Archive) error {
	if len(archive.Sessions) > 0 {
		if err := g.SaveSessions(ctx, archive.Sessions); err != nil {
			return err
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for k, v := range archive.Settings {
		g.settings[k] = append(json.RawMessage(nil), v...)
	}
	return nil
}

// ClearAll removes all sessions and settings.
func (g *MemoryGateway) ClearAll(_ context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions = nil
	g.settings = make(map[string]json.RawMessage)
	return nil
}
