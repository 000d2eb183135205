package backup

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parleychat/parley/internal/chat"
	"github.com/parleychat/parley/internal/storage"
)

func newJob(t *testing.T) (*exportJob, *storage.MemoryGateway) {
	t.Helper()
	mem := storage.NewMemoryGateway()
	return &exportJob{
		gateway:  mem,
		dir:      t.TempDir(),
		keep:     3,
		schedule: defaultSchedule,
		logger:   slog.Default(),
		now:      time.Now,
	}, mem
}

func TestExportJob_WritesArchive(t *testing.T) {
	t.Parallel()
	job, mem := newJob(t)

	sessions := []chat.ChatSession{{ID: "s-1", Title: "weather talk"}}
	if err := mem.SaveSessions(context.Background(), sessions); err != nil {
		t.Fatal(err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(job.dir, archivePrefix+"*.json"))
	if err != nil || len(files) != 1 {
		t.Fatalf("archives = %v, err = %v", files, err)
	}

	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatal(err)
	}
	var archive chat.Archive
	if err := json.Unmarshal(data, &archive); err != nil {
		t.Fatalf("decoding archive: %v", err)
	}
	if len(archive.Sessions) != 1 || archive.Sessions[0].ID != "s-1" {
		t.Errorf("archive = %+v", archive)
	}
}

func TestExportJob_PrunesOldArchives(t *testing.T) {
	t.Parallel()
	job, _ := newJob(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		tick := base.Add(time.Duration(i) * time.Hour)
		job.now = func() time.Time { return tick }
		if err := job.Run(context.Background()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	files, err := filepath.Glob(filepath.Join(job.dir, archivePrefix+"*.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Fatalf("retained = %d, want 3: %v", len(files), files)
	}
	// The three newest survive.
	newest := archivePrefix + base.Add(4*time.Hour).Format("20060102-150405") + ".json"
	found := false
	for _, f := range files {
		if filepath.Base(f) == newest {
			found = true
		}
	}
	if !found {
		t.Errorf("newest archive %s missing from %v", newest, files)
	}
}

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.defaults()
	if cfg.Schedule != defaultSchedule || cfg.Keep != defaultKeep {
		t.Errorf("defaults = %+v", cfg)
	}
	cfg.Keep = -1
	if err := cfg.validate(); err == nil {
		t.Error("negative keep accepted")
	}
}
