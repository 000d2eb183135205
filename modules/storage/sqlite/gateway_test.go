package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/parleychat/parley/internal/chat"
)

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	cfg := Config{Path: filepath.Join(t.TempDir(), "test.db")}
	cfg.defaults()
	db, err := open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewGateway(db)
}

func sampleSession(id string, activity time.Time) chat.ChatSession {
	return chat.ChatSession{
		ID:    id,
		Title: "Chat " + id,
		Messages: []chat.Message{
			{ID: "1", Content: "hello", IsUser: true, Status: chat.StatusSent, Timestamp: activity},
		},
		LastActivity: activity,
		IsActive:     true,
	}
}

func TestSaveLoadSessions_RoundTrip(t *testing.T) {
	t.Parallel()
	g := newTestGateway(t)
	ctx := context.Background()

	older := sampleSession("a", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	newer := sampleSession("b", time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	if err := g.SaveSessions(ctx, []chat.ChatSession{older, newer}); err != nil {
		t.Fatal(err)
	}

	got, err := g.LoadSessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("session count = %d, want 2", len(got))
	}
	// Most recent activity first.
	if got[0].ID != "b" || got[1].ID != "a" {
		t.Errorf("order = %q, %q; want b, a", got[0].ID, got[1].ID)
	}
	if got[0].Title != "Chat b" || len(got[0].Messages) != 1 {
		t.Errorf("session document lost fields: %+v", got[0])
	}
}

func TestSaveSessions_FullReplace(t *testing.T) {
	t.Parallel()
	g := newTestGateway(t)
	ctx := context.Background()

	first := sampleSession("a", time.Now().UTC())
	if err := g.SaveSessions(ctx, []chat.ChatSession{first}); err != nil {
		t.Fatal(err)
	}
	second := sampleSession("b", time.Now().UTC())
	if err := g.SaveSessions(ctx, []chat.ChatSession{second}); err != nil {
		t.Fatal(err)
	}

	got, err := g.LoadSessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("save must replace the full set, got %+v", got)
	}
}

func TestDeleteSession(t *testing.T) {
	t.Parallel()
	g := newTestGateway(t)
	ctx := context.Background()

	if err := g.SaveSessions(ctx, []chat.ChatSession{sampleSession("a", time.Now().UTC())}); err != nil {
		t.Fatal(err)
	}
	if err := g.DeleteSession(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := g.DeleteSession(ctx, "missing"); err != nil {
		t.Errorf("unknown ID must be a no-op, got %v", err)
	}

	got, err := g.LoadSessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("sessions left after delete: %d", len(got))
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	t.Parallel()
	g := newTestGateway(t)
	ctx := context.Background()

	if v, err := g.LoadSetting(ctx, "missing"); err != nil || v != nil {
		t.Errorf("missing key = %s, %v; want nil, nil", v, err)
	}

	if err := g.SaveSetting(ctx, "optimization", json.RawMessage(`{"enabled":true}`)); err != nil {
		t.Fatal(err)
	}
	if err := g.SaveSetting(ctx, "optimization", json.RawMessage(`{"enabled":false}`)); err != nil {
		t.Fatal(err)
	}

	v, err := g.LoadSetting(ctx, "optimization")
	if err != nil {
		t.Fatal(err)
	}
	if string(v) != `{"enabled":false}` {
		t.Errorf("value = %s", v)
	}
}

func TestExportImportClear(t *testing.T) {
	t.Parallel()
	g := newTestGateway(t)
	ctx := context.Background()

	if err := g.SaveSessions(ctx, []chat.ChatSession{sampleSession("a", time.Now().UTC())}); err != nil {
		t.Fatal(err)
	}
	if err := g.SaveSetting(ctx, "llm-api-keys", json.RawMessage(`[]`)); err != nil {
		t.Fatal(err)
	}

	archive, err := g.ExportAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(archive.Sessions) != 1 || len(archive.Settings) != 1 {
		t.Fatalf("archive = %d sessions, %d settings", len(archive.Sessions), len(archive.Settings))
	}

	if err := g.ClearAll(ctx); err != nil {
		t.Fatal(err)
	}
	after, err := g.ExportAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(after.Sessions) != 0 || len(after.Settings) != 0 {
		t.Errorf("clear left data behind: %+v", after)
	}

	if err := g.ImportAll(ctx, archive); err != nil {
		t.Fatal(err)
	}
	restored, err := g.ExportAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(restored.Sessions) != 1 || len(restored.Settings) != 1 {
		t.Errorf("import incomplete: %+v", restored)
	}
}

func TestImportAll_EmptySessionsKeepsExisting(t *testing.T) {
	t.Parallel()
	g := newTestGateway(t)
	ctx := context.Background()

	if err := g.SaveSessions(ctx, []chat.ChatSession{sampleSession("keep", time.Now().UTC())}); err != nil {
		t.Fatal(err)
	}
	if err := g.ImportAll(ctx, chat.Archive{Settings: map[string]json.RawMessage{"k": json.RawMessage(`1`)}}); err != nil {
		t.Fatal(err)
	}

	got, err := g.LoadSessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "keep" {
		t.Errorf("existing sessions lost on sessionless import: %+v", got)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	cfg := Config{Path: filepath.Join(t.TempDir(), "test.db")}
	cfg.defaults()
	db, err := open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	if err := migrate(db); err != nil {
		t.Fatalf("re-migration failed: %v", err)
	}
	var version int
	if err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		t.Fatal(err)
	}
	if version != schemaVersion {
		t.Errorf("schema version = %d, want %d", version, schemaVersion)
	}
}
