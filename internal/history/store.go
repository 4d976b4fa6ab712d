// internal/history/store.go
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tamzrod/session-keeper/internal/keeper"
)

const schema = `CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	at TEXT NOT NULL,
	kind TEXT NOT NULL,
	successful INTEGER NOT NULL,
	failed INTEGER NOT NULL,
	relogins INTEGER NOT NULL,
	detail TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS events_run ON events(run_id);`

// Store is the SQLite check journal. It implements keeper.Journal.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates (or opens) the journal database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history: database path is required")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("history: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	// One writer; SQLite serializes anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record appends e.
func (s *Store) Record(e keeper.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO events
		(run_id, at, kind, successful, failed, relogins, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.RunID,
		e.At.UTC().Format(time.RFC3339Nano),
		string(e.Kind),
		int64(e.Successful),
		int64(e.Failed),
		int64(e.Relogins),
		e.Detail,
	)
	if err != nil {
		return fmt.Errorf("history: insert: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first. limit <= 0 returns all.
func (s *Store) Recent(limit int) ([]keeper.Event, error) {
	q := `SELECT run_id, at, kind, successful, failed, relogins, detail FROM events ORDER BY id DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var out []keeper.Event
	for rows.Next() {
		var (
			e                      keeper.Event
			at, kind               string
			succ, failed, relogins int64
		)
		if err := rows.Scan(&e.RunID, &at, &kind, &succ, &failed, &relogins, &e.Detail); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, at); err == nil {
			e.At = t
		}
		e.Kind = keeper.EventKind(kind)
		e.Successful = uint64(succ)
		e.Failed = uint64(failed)
		e.Relogins = uint64(relogins)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: rows: %w", err)
	}
	return out, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
