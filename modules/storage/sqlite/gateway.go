package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/parleychat/parley/internal/chat"
)

// Gateway is the SQLite-backed chat persistence gateway. Sessions are
// stored as one JSON document per row; save semantics are full replace
// inside a single transaction.
type Gateway struct {
	db *sql.DB
}

// NewGateway wraps an already-opened database. Used by tests; production
// construction goes through the module lifecycle.
func NewGateway(db *sql.DB) *Gateway {
	return &Gateway{db: db}
}

// LoadSessions implements chat.Gateway.
func (g *Gateway) LoadSessions(ctx context.Context) ([]chat.ChatSession, error) {
	rows, err := g.db.QueryContext(ctx, "SELECT doc FROM sessions ORDER BY last_activity DESC")
	if err != nil {
		return nil, fmt.Errorf("sqlite: load sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []chat.ChatSession
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("sqlite: scan session: %w", err)
		}
		var sess chat.ChatSession
		if err := json.Unmarshal([]byte(doc), &sess); err != nil {
			return nil, fmt.Errorf("sqlite: decode session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: load sessions: %w", err)
	}
	return sessions, nil
}

// SaveSessions implements chat.Gateway. The stored set is replaced in
// full inside one transaction.
func (g *Gateway) SaveSessions(ctx context.Context, sessions []chat.ChatSession) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM sessions"); err != nil {
		return fmt.Errorf("sqlite: clear sessions: %w", err)
	}
	if err := insertSessions(ctx, tx, sessions); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit save: %w", err)
	}
	return nil
}

// DeleteSession implements chat.Gateway. Unknown IDs are a no-op.
func (g *Gateway) DeleteSession(ctx context.Context, id string) error {
	if _, err := g.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("sqlite: delete session %s: %w", id, err)
	}
	return nil
}

// SaveSetting implements chat.Gateway.
func (g *Gateway) SaveSetting(ctx context.Context, key string, value json.RawMessage) error {
	if _, err := g.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, string(value)); err != nil {
		return fmt.Errorf("sqlite: save setting %s: %w", key, err)
	}
	return nil
}

// LoadSetting implements chat.Gateway. Missing keys return nil.
func (g *Gateway) LoadSetting(ctx context.Context, key string) (json.RawMessage, error) {
	var value string
	err := g.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load setting %s: %w", key, err)
	}
	return json.RawMessage(value), nil
}

// ExportAll implements chat.Gateway.
func (g *Gateway) ExportAll(ctx context.Context) (chat.Archive, error) {
	sessions, err := g.LoadSessions(ctx)
	if err != nil {
		return chat.Archive{}, err
	}

	rows, err := g.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return chat.Archive{}, fmt.Errorf("sqlite: export settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	settings := make(map[string]json.RawMessage)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return chat.Archive{}, fmt.Errorf("sqlite: scan setting: %w", err)
		}
		settings[key] = json.RawMessage(value)
	}
	if err := rows.Err(); err != nil {
		return chat.Archive{}, fmt.Errorf("sqlite: export settings: %w", err)
	}

	return chat.Archive{Sessions: sessions, Settings: settings}, nil
}

// ImportAll implements chat.Gateway. An archive without sessions leaves
// the stored sessions untouched; settings entries merge over existing.
func (g *Gateway) ImportAll(ctx context.Context, archive chat.Archive) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if len(archive.Sessions) > 0 {
		if _, err := tx.ExecContext(ctx, "DELETE FROM sessions"); err != nil {
			return fmt.Errorf("sqlite: clear sessions: %w", err)
		}
		if err := insertSessions(ctx, tx, archive.Sessions); err != nil {
			return err
		}
	}

	for key, value := range archive.Settings {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, string(value)); err != nil {
			return fmt.Errorf("sqlite: import setting %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit import: %w", err)
	}
	return nil
}

// ClearAll implements chat.Gateway.
func (g *Gateway) ClearAll(ctx context.Context) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin clear: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM sessions"); err != nil {
		return fmt.Errorf("sqlite: clear sessions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM settings"); err != nil {
		return fmt.Errorf("sqlite: clear settings: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit clear: %w", err)
	}
	return nil
}

func insertSessions(ctx context.Context, tx *sql.Tx, sessions []chat.ChatSession) error {
	for i := range sessions {
		doc, err := json.Marshal(&sessions[i])
		if err != nil {
			return fmt.Errorf("sqlite: encode session %s: %w", sessions[i].ID, err)
		}
		activity := sessions[i].LastActivity.UTC().Format(time.RFC3339Nano)
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO sessions (id, doc, last_activity) VALUES (?, ?, ?)",
			sessions[i].ID, string(doc), activity); err != nil {
			return fmt.Errorf("sqlite: insert session %s: %w", sessions[i].ID, err)
		}
	}
	return nil
}
