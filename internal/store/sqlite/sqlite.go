// Package sqlite implements the store on a single SQLite database file using
// the pure-Go modernc driver. Writes go through one connection opened with
// immediate transactions; reads go through a small read-only pool.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/axonhq/axon/internal/domain"
	"github.com/axonhq/axon/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	owner TEXT,
	state TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	done_at TEXT,
	archived_at TEXT
);
CREATE TABLE IF NOT EXISTS task_messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id INTEGER NOT NULL REFERENCES tasks(id),
	author TEXT NOT NULL,
	target TEXT,
	kind TEXT NOT NULL,
	content TEXT NOT NULL,
	reply_to INTEGER REFERENCES task_messages(id),
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS work_sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id INTEGER NOT NULL REFERENCES tasks(id),
	agent TEXT NOT NULL,
	started_at TEXT NOT NULL,
	ended_at TEXT,
	notes TEXT,
	productivity_score REAL
);
`

const indexes = `
CREATE INDEX IF NOT EXISTS idx_tasks_owner ON tasks(owner);
CREATE INDEX IF NOT EXISTS idx_tasks_state ON tasks(state);
CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks(created_at);
CREATE INDEX IF NOT EXISTS idx_messages_task_order ON task_messages(task_id, created_at, id);
CREATE INDEX IF NOT EXISTS idx_messages_task_target ON task_messages(task_id, target);
CREATE INDEX IF NOT EXISTS idx_messages_task_author ON task_messages(task_id, author);
CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_open ON work_sessions(task_id, agent) WHERE ended_at IS NULL;
`

const defaultReaderConns = 8

// Store implements store.Store on SQLite.
type Store struct {
	writer *sql.DB
	reader *sql.DB
}

var _ store.Store = (*Store)(nil)

// New opens (creating if absent) the database at path, applies the embedded
// schema, and returns the store. readerConns bounds the read pool; values
// below 1 fall back to the default of 8.
func New(path string, readerConns int) (*Store, error) {
	if readerConns < 1 {
		readerConns = defaultReaderConns
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite mkdir: %w", err)
		}
	}

	writer, err := sql.Open("sqlite", writerDSN(path))
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	writer.SetMaxOpenConns(1)
	if _, err := writer.Exec(schema); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	if _, err := writer.Exec(indexes); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("sqlite indexes: %w", err)
	}

	reader, err := sql.Open("sqlite", readerDSN(path))
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("sqlite open reader: %w", err)
	}
	reader.SetMaxOpenConns(readerConns)
	if err := reader.Ping(); err != nil {
		_ = writer.Close()
		_ = reader.Close()
		return nil, fmt.Errorf("sqlite reader ping: %w", err)
	}

	return &Store{writer: writer, reader: reader}, nil
}

func writerDSN(path string) string {
	return "file:" + filepath.ToSlash(path) +
		"?_txlock=immediate" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=synchronous(NORMAL)"
}

func readerDSN(path string) string {
	return "file:" + filepath.ToSlash(path) +
		"?mode=ro" +
		"&_pragma=busy_timeout(5000)"
}

// Close releases both connection pools. Call on shutdown for clean exit.
func (s *Store) Close() error {
	var firstErr error
	if s.reader != nil {
		if err := s.reader.Close(); err != nil {
			firstErr = err
		}
		s.reader = nil
	}
	if s.writer != nil {
		if err := s.writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.writer = nil
	}
	return firstErr
}

// Stats implements store.Store.
func (s *Store) Stats(ctx context.Context) (*store.Stats, error) {
	st := &store.Stats{TasksByState: make(map[domain.State]int)}

	rows, err := s.reader.QueryContext(ctx, "SELECT state, COUNT(*) FROM tasks GROUP BY state")
	if err != nil {
		return nil, fmt.Errorf("stats tasks: %w", err)
	}
	for rows.Next() {
		var state string
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			_ = rows.Close()
			return nil, err
		}
		st.TasksByState[domain.State(state)] = n
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stats tasks iteration: %w", err)
	}

	if err := s.reader.QueryRowContext(ctx, "SELECT COUNT(*) FROM task_messages").Scan(&st.Messages); err != nil {
		return nil, fmt.Errorf("stats messages: %w", err)
	}
	if err := s.reader.QueryRowContext(ctx, "SELECT COUNT(*) FROM work_sessions WHERE ended_at IS NULL").Scan(&st.OpenSessions); err != nil {
		return nil, fmt.Errorf("stats sessions: %w", err)
	}
	return st, nil
}

// formatTime stores timestamps as RFC3339 UTC. Fixed-width UTC strings keep
// lexicographic and chronological order identical, so created_at range
// filters and ORDER BY work on the TEXT column directly.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s, context string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: parse timestamp %q: %w", context, s, err)
	}
	return t, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure on the
// named column or index.
func isUniqueViolation(err error, what string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") && strings.Contains(err.Error(), what)
}
