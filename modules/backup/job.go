package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parleychat/parley/internal/chat"
	"github.com/parleychat/parley/internal/cron"
)

const archivePrefix = "parley-"

// exportJob snapshots the full durable state into a timestamped JSON
// file and prunes old snapshots beyond the retention count.
type exportJob struct {
	gateway  chat.Gateway
	dir      string
	keep     int
	schedule string
	logger   *slog.Logger
	now      func() time.Time
}

var _ cron.Job = (*exportJob)(nil)

func (j *exportJob) Name() string { return "archive_export" }

func (j *exportJob) Schedule() string { return j.schedule }

func (j *exportJob) Run(ctx context.Context) error {
	archive, err := j.gateway.ExportAll(ctx)
	if err != nil {
		return fmt.Errorf("backup: export: %w", err)
	}

	data, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return fmt.Errorf("backup: encode archive: %w", err)
	}

	name := archivePrefix + j.now().UTC().Format("20060102-150405") + ".json"
	path := filepath.Join(j.dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("backup: write %s: %w", path, err)
	}

	j.logger.Info("backup written", "path", path, "sessions", len(archive.Sessions))
	return j.prune()
}

// prune removes the oldest archives beyond the retention count. The
// timestamped names sort lexicographically in age order.
func (j *exportJob) prune() error {
	entries, err := filepath.Glob(filepath.Join(j.dir, archivePrefix+"*.json"))
	if err != nil {
		return fmt.Errorf("backup: list archives: %w", err)
	}
	if j.keep <= 0 || len(entries) <= j.keep {
		return nil
	}

	sort.Strings(entries)
	for _, path := range entries[:len(entries)-j.keep] {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("backup: prune %s: %w", path, err)
		}
		j.logger.Debug("backup pruned", "path", path)
	}
	return nil
}
