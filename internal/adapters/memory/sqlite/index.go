// Package sqlite reads snapshot metadata from the memory_snapshots table of a
// SQLite database shared with the memory collaborator.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/bnema/gatekeeper/internal/ports"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// timeLayout has a fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
	CREATE TABLE IF NOT EXISTS memory_snapshots (
		id         TEXT PRIMARY KEY,
		folder     TEXT NOT NULL,
		title      TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_memory_snapshots_folder
		ON memory_snapshots (folder, created_at DESC);
`

type Index struct {
	db *sql.DB
}

var _ ports.MemoryIndex = (*Index)(nil)

func Open(path string) (*Index, error) {
	if path == "" {
		return nil, errors.New("memory database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("memory: create data dir: %w", err)
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("memory: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 2000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("memory: %s: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("memory: migrate: %w", err)
	}

	return &Index{db: db}, nil
}

func (i *Index) Close() error {
	return i.db.Close()
}

// Record inserts or replaces one snapshot row.
func (i *Index) Record(ctx context.Context, folder string, snapshot domain.Snapshot) error {
	_, err := i.db.ExecContext(ctx,
		`INSERT INTO memory_snapshots (id, folder, title, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET folder = excluded.folder, title = excluded.title, created_at = excluded.created_at`,
		snapshot.ID, folder, snapshot.Title, snapshot.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("memory: record snapshot: %w", err)
	}
	return nil
}

// ListSnapshots returns snapshots newest first. A non-positive limit returns all of them.
func (i *Index) ListSnapshots(ctx context.Context, folder string, limit int) ([]domain.Snapshot, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := i.db.QueryContext(ctx,
		`SELECT id, title, created_at FROM memory_snapshots
		 WHERE folder = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		folder, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("memory: list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []domain.Snapshot{}
	for rows.Next() {
		var (
			snapshot  domain.Snapshot
			createdAt string
		)
		if err := rows.Scan(&snapshot.ID, &snapshot.Title, &createdAt); err != nil {
			return nil, fmt.Errorf("memory: scan snapshot: %w", err)
		}
		snapshot.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("memory: iterate snapshots: %w", err)
	}

	return snapshots, nil
}

func (i *Index) HasSnapshots(ctx context.Context, folder string) (bool, error) {
	var exists int
	err := i.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM memory_snapshots WHERE folder = ?)`, folder,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("memory: check snapshots: %w", err)
	}
	return exists == 1, nil
}
