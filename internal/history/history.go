// Package history records zhi interactions in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Status is the outcome of an interaction
type Status string

const (
	StatusAnswered  Status = "answered"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Entry is one recorded interaction
type Entry struct {
	ID         string
	ClientName string
	Message    string
	Options    []string
	Status     Status
	Response   string // text the agent received
	Error      string
	CreatedAt  time.Time
	Duration   time.Duration
}

// Query filters Recent
type Query struct {
	Limit  int    // 0 means DefaultLimit
	Client string // empty means all clients
}

// DefaultLimit is the number of entries Recent returns by default
const DefaultLimit = 20

const schema = `
CREATE TABLE IF NOT EXISTS interactions (
	id          TEXT PRIMARY KEY,
	client_name TEXT NOT NULL DEFAULT '',
	message     TEXT NOT NULL,
	options     TEXT NOT NULL DEFAULT '[]',
	status      TEXT NOT NULL,
	response    TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS interactions_created_at ON interactions(created_at);
CREATE INDEX IF NOT EXISTS interactions_client ON interactions(client_name, created_at);
`

// Store is a SQLite-backed interaction log
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// Several zhi processes may share the file; keep one writer per process
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores e, replacing any entry with the same ID
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		return fmt.Errorf("history entry has no id")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	options, err := json.Marshal(nonNil(e.Options))
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO interactions
			(id, client_name, message, options, status, response, error, created_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ClientName, e.Message, string(options), string(e.Status),
		e.Response, e.Error, e.CreatedAt.UnixMilli(), e.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record interaction: %w", err)
	}
	return nil
}

// Recent returns the newest entries first
func (s *Store) Recent(ctx context.Context, q Query) ([]Entry, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := `SELECT id, client_name, message, options, status, response, error, created_at, duration_ms
		FROM interactions`
	args := []any{}
	if q.Client != "" {
		query += ` WHERE client_name = ?`
		args = append(args, q.Client)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			options    string
			status     string
			createdAt  int64
			durationMS int64
		)
		if err := rows.Scan(&e.ID, &e.ClientName, &e.Message, &options, &status,
			&e.Response, &e.Error, &createdAt, &durationMS); err != nil {
			return nil, fmt.Errorf("failed to read history row: %w", err)
		}
		if err := json.Unmarshal([]byte(options), &e.Options); err != nil {
			return nil, fmt.Errorf("failed to decode options for %s: %w", e.ID, err)
		}
		if len(e.Options) == 0 {
			e.Options = nil
		}
		e.Status = Status(status)
		e.CreatedAt = time.UnixMilli(createdAt)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	return entries, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
