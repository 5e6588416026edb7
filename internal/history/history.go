// Package history records reconciliation runs and the build ids they
// consumed in a local SQLite database, so later runs can skip builds that
// were already folded in.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store is a build history database.
type Store struct {
	db *sql.DB
}

// Run summarizes one recorded reconciliation run.
type Run struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Bug       string    `json:"bug,omitempty"`
	Builds    int       `json:"builds"`
}

// DefaultPath returns the history database location under the user config dir.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	return filepath.Join(configDir, "deflake", "history.db"), nil
}

// Open opens (creating if needed) the database at path. ":memory:" opens a
// private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		bug TEXT
	);

	CREATE TABLE IF NOT EXISTS builds (
		build_id TEXT NOT NULL,
		run_id TEXT NOT NULL REFERENCES runs(id),
		processed_at TEXT NOT NULL,
		PRIMARY KEY (build_id, run_id)
	);

	CREATE INDEX IF NOT EXISTS idx_builds_build_id ON builds(build_id);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// BeginRun records a new run and returns its id.
func (s *Store) BeginRun(ctx context.Context, bug string, now time.Time) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, bug) VALUES (?, ?, ?)`,
		id, now.UTC().Format(time.RFC3339Nano), bug)
	if err != nil {
		return "", fmt.Errorf("recording run: %w", err)
	}
	return id, nil
}

// RecordBuild marks buildID as consumed by runID.
func (s *Store) RecordBuild(ctx context.Context, runID, buildID string, now time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO builds (build_id, run_id, processed_at) VALUES (?, ?, ?)`,
		buildID, runID, now.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("recording build %s: %w", buildID, err)
	}
	return nil
}

// Seen reports whether any earlier run consumed buildID.
func (s *Store) Seen(ctx context.Context, buildID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM builds WHERE build_id = ?`, buildID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("querying build %s: %w", buildID, err)
	}
	return n > 0, nil
}

// Unseen returns the ids not consumed by any earlier run, preserving order.
func (s *Store) Unseen(ctx context.Context, ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		seen, err := s.Seen(ctx, id)
		if err != nil {
			return nil, err
		}
		if !seen {
			out = append(out, id)
		}
	}
	return out, nil
}

// Runs lists recorded runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.started_at, COALESCE(r.bug, ''), COUNT(b.build_id)
		FROM runs r
		LEFT JOIN builds b ON b.run_id = r.id
		GROUP BY r.id, r.started_at, r.bug
		ORDER BY r.started_at DESC, r.id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &started, &r.Bug, &r.Builds); err != nil {
			return nil, err
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("run %s: bad timestamp %q: %w", r.ID, started, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
