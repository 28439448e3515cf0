// Package archive provides a SQLite-backed append-only archive of dialogue
// exchanges. The vector index holds the embeddings; the archive is the
// durable system of record, giving every exchange a stable ordinal across
// restarts and serving the history endpoint. Exchanges are write-once —
// never mutated, only appended.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Entry is one archived exchange.
type Entry struct {
	// ID is the exchange's opaque unique identifier.
	ID string
	// Ordinal is the append-order sequence number assigned by the archive.
	Ordinal int64
	// UserText is the user's side of the exchange.
	UserText string
	// AssistantText is the assistant's side of the exchange.
	AssistantText string
	// CreatedAt is when the exchange was persisted.
	CreatedAt time.Time
}

// Recorder persists and retrieves archived exchanges.
// Implementations must be safe for concurrent use.
type Recorder interface {
	// Append persists a single exchange and returns its assigned ordinal.
	Append(ctx context.Context, id, userText, assistantText string) (int64, error)
	// Recent returns the most recent n exchanges, newest first.
	Recent(ctx context.Context, n int) ([]Entry, error)
	// Count returns the total number of archived exchanges.
	Count(ctx context.Context) (int64, error)
	// Close releases any resources held by the archive.
	Close() error
}

// SQLiteArchive is a Recorder backed by a local SQLite database.
type SQLiteArchive struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath returns the default path for the exchange archive database.
// It resolves to ~/.recall/exchanges.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("archive: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".recall")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("archive: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "exchanges.db"), nil
}

// Open opens (or creates) a SQLiteArchive at the given path and runs the
// schema migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteArchive, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	a := &SQLiteArchive{db: db}
	if err := a.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

// migrate creates the schema if it does not already exist.
func (a *SQLiteArchive) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS exchanges (
    ordinal        INTEGER PRIMARY KEY AUTOINCREMENT,
    id             TEXT    NOT NULL UNIQUE,
    user_text      TEXT    NOT NULL,
    assistant_text TEXT    NOT NULL,
    created_at     INTEGER NOT NULL  -- Unix timestamp (seconds)
);
`
	if _, err := a.db.Exec(ddl); err != nil {
		return fmt.Errorf("archive: migrate: %w", err)
	}
	return nil
}

// Append persists a single exchange and returns its assigned ordinal.
// Appending the same exchange ID twice is an error — exchanges are immutable.
func (a *SQLiteArchive) Append(ctx context.Context, id, userText, assistantText string) (int64, error) {
	const q = `INSERT INTO exchanges (id, user_text, assistant_text, created_at) VALUES (?, ?, ?, ?)`
	res, err := a.db.ExecContext(ctx, q, id, userText, assistantText, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("archive: append: %w", err)
	}
	ordinal, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("archive: append ordinal: %w", err)
	}
	return ordinal, nil
}

// Recent returns the most recent n exchanges, newest first.
func (a *SQLiteArchive) Recent(ctx context.Context, n int) ([]Entry, error) {
	const q = `
SELECT ordinal, id, user_text, assistant_text, created_at
FROM   exchanges
ORDER  BY ordinal DESC
LIMIT  ?`

	rows, err := a.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, fmt.Errorf("archive: recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.Ordinal, &e.ID, &e.UserText, &e.AssistantText, &ts); err != nil {
			return nil, fmt.Errorf("archive: recent scan: %w", err)
		}
		e.CreatedAt = time.Unix(ts, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive: recent rows: %w", err)
	}
	return entries, nil
}

// Count returns the total number of archived exchanges.
func (a *SQLiteArchive) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exchanges`).Scan(&n); err != nil {
		return 0, fmt.Errorf("archive: count: %w", err)
	}
	return n, nil
}

// Close closes the underlying database connection.
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}
