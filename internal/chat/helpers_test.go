package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
)

// fakeGateway is an in-memory Gateway recording the last saved snapshot.
// Individual operations can be made to fail.
type fakeGateway struct {
	mu        sync.Mutex
	saved     []ChatSession
	settings  map[string]json.RawMessage
	saveCalls int
	failSave  error
	failLoad  error
	failDel   error
	deleted   []string
}

var _ Gateway = (*fakeGateway)(nil)

func newFakeGateway() *fakeGateway {
	return &fakeGateway{settings: make(map[string]json.RawMessage)}
}

func (g *fakeGateway) LoadSessions(context.Context) ([]ChatSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failLoad != nil {
		return nil, g.failLoad
	}
	result := make([]ChatSession, len(g.saved))
	for i := range g.saved {
		result[i] = g.saved[i].Clone()
	}
	return result, nil
}

func (g *fakeGateway) SaveSessions(_ context.Context, sessions []ChatSession) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.saveCalls++
	if g.failSave != nil {
		return g.failSave
	}
	g.saved = make([]ChatSession, len(sessions))
	for i := range sessions {
		g.saved[i] = sessions[i].Clone()
	}
	return nil
}

func (g *fakeGateway) DeleteSession(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleted = append(g.deleted, id)
	return g.failDel
}

func (g *fakeGateway) SaveSetting(_ context.Context, key string, value json.RawMessage) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.settings[key] = append(json.RawMessage(nil), value...)
	return nil
}

func (g *fakeGateway) LoadSetting(_ context.Context, key string) (json.RawMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.settings[key], nil
}

func (g *fakeGateway) ExportAll(context.Context) (Archive, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sessions := make([]ChatSession, len(g.saved))
	for i := range g.saved {
		sessions[i] = g.saved[i].Clone()
	}
	settings := make(map[string]json.RawMessage, len(g.settings))
	for k, v := range g.settings {
		settings[k] = append(json.RawMessage(nil), v...)
	}
	return Archive{Sessions: sessions, Settings: settings}, nil
}

func (g *fakeGateway) ImportAll(_ context.Context, archive Archive) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(archive.Sessions) > 0 {
		g.saved = make([]ChatSession, len(archive.Sessions))
		for i := range archive.Sessions {
			g.saved[i] = archive.Sessions[i].Clone()
		}
	}
	for k, v := range archive.Settings {
		g.settings[k] = append(json.RawMessage(nil), v...)
	}
	return nil
}

func (g *fakeGateway) ClearAll(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.saved = nil
	g.settings = make(map[string]json.RawMessage)
	return nil
}

func (g *fakeGateway) lastSaved() []ChatSession {
	g.mu.Lock()
	defer g.mu.Unlock()
	result := make([]ChatSession, len(g.saved))
	for i := range g.saved {
		result[i] = g.saved[i].Clone()
	}
	return result
}

// newTestStore builds a loaded store with a near-zero status delay.
func newTestStore(t *testing.T) (*Store, *fakeGateway) {
	t.Helper()
	gw := newFakeGateway()
	s := NewStore(gw, slog.Default(), WithStatusDelay(0))
	s.Load(context.Background())
	return s, gw
}

func activeOrFatal(t *testing.T, s *Store) ChatSession {
	t.Helper()
	sess, ok := s.ActiveSession()
	if !ok {
		t.Fatal("no active session")
	}
	return sess
}
