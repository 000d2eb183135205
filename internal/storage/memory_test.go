package storage

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/parleychat/parley/internal/chat"
)

func TestMemoryGateway_SessionsSortedByActivity(t *testing.T) {
	t.Parallel()
	g := NewMemoryGateway()
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	err := g.SaveSessions(ctx, []chat.ChatSession{
		{ID: "old", LastActivity: base},
		{ID: "new", LastActivity: base.Add(time.Hour)},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := g.LoadSessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "new" || got[1].ID != "old" {
		t.Errorf("sessions = %+v", got)
	}
}

func TestMemoryGateway_DeleteSession(t *testing.T) {
	t.Parallel()
	g := NewMemoryGateway()
	ctx := context.Background()

	_ = g.SaveSessions(ctx, []chat.ChatSession{{ID: "a"}, {ID: "b"}})
	if err := g.DeleteSession(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := g.DeleteSession(ctx, "missing"); err != nil {
		t.Errorf("unknown id should be a no-op: %v", err)
	}

	got, _ := g.LoadSessions(ctx)
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("sessions = %+v", got)
	}
}

func TestMemoryGateway_Settings(t *testing.T) {
	t.Parallel()
	g := NewMemoryGateway()
	ctx := context.Background()

	missing, err := g.LoadSetting(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("LoadSetting(missing) = %s, %v", missing, err)
	}

	if err := g.SaveSetting(ctx, "optimization", json.RawMessage(`{"enabled":true}`)); err != nil {
		t.Fatal(err)
	}
	raw, err := g.LoadSetting(ctx, "optimization")
	if err != nil || string(raw) != `{"enabled":true}` {
		t.Errorf("LoadSetting = %s, %v", raw, err)
	}
}

func TestMemoryGateway_ExportImportClear(t *testing.T) {
	t.Parallel()
	g := NewMemoryGateway()
	ctx := context.Background()

	_ = g.SaveSessions(ctx, []chat.ChatSession{{ID: "s-1"}})
	_ = g.SaveSetting(ctx, "llm-api-keys", json.RawMessage(`[]`))

	archive, err := g.ExportAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(archive.Sessions) != 1 || len(archive.Settings) != 1 {
		t.Fatalf("archive = %+v", archive)
	}

	if err := g.ClearAll(ctx); err != nil {
		t.Fatal(err)
	}
	got, _ := g.LoadSessions(ctx)
	raw, _ := g.LoadSetting(ctx, "llm-api-keys")
	if len(got) != 0 || raw != nil {
		t.Errorf("clear left sessions=%d setting=%s", len(got), raw)
	}

	if err := g.ImportAll(ctx, archive); err != nil {
		t.Fatal(err)
	}
	got, _ = g.LoadSessions(ctx)
	if len(got) != 1 || got[0].ID != "s-1" {
		t.Errorf("after import: %+v", got)
	}
}

func TestMemoryGateway_ImportEmptyKeepsSessions(t *testing.T) {
	t.Parallel()
	g := NewMemoryGateway()
	ctx := context.Background()

	_ = g.SaveSessions(ctx, []chat.ChatSession{{ID: "keep"}})
	if err := g.ImportAll(ctx, chat.Archive{}); err != nil {
		t.Fatal(err)
	}
	got, _ := g.LoadSessions(ctx)
	if len(got) != 1 || got[0].ID != "keep" {
		t.Errorf("sessions = %+v", got)
	}
}
