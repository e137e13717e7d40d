// Package store persists board snapshots in a local SQLite database. Each
// board is one row holding its TOML encoding and a version number used for
// optimistic concurrency: a save succeeds only against the version it was
// read at.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/papapumpkin/closeboard/internal/board"
	"github.com/papapumpkin/closeboard/internal/boardfile"
)

var (
	// ErrNotFound is returned when no board has the requested id.
	ErrNotFound = errors.New("board not found")
	// ErrExists is returned by Create when the id is taken.
	ErrExists = errors.New("board already exists")
	// ErrVersionConflict is returned by Save when the stored board has moved
	// past the expected version.
	ErrVersionConflict = errors.New("board version conflict")
)

const schema = `
CREATE TABLE IF NOT EXISTS boards (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    version    INTEGER NOT NULL,
    payload    TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Summary describes a stored board without decoding it.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SQLiteStore is a board store backed by SQLite in WAL mode.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at dbPath, enables WAL mode and a
// busy timeout, and creates the schema if needed.
func Open(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// SQLite has a single writer; one pooled connection keeps PRAGMAs in
	// effect and avoids SQLITE_BUSY between our own connections.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Create inserts b at version 1 and returns the stored copy.
func (s *SQLiteStore) Create(ctx context.Context, b *board.Board) (*board.Board, error) {
	if b.ID == "" {
		return nil, fmt.Errorf("store: create: %w", board.ErrMissingField)
	}
	stored := b.Clone()
	stored.Version = 1
	payload, err := boardfile.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("store: create %q: %w", b.ID, err)
	}

	const q = `INSERT INTO boards (id, name, version, payload) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`
	res, err := s.db.ExecContext(ctx, q, stored.ID, stored.Name, stored.Version, string(payload))
	if err != nil {
		return nil, fmt.Errorf("store: create %q: %w", b.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("store: create rows affected: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrExists, b.ID)
	}
	return stored, nil
}

// Get loads the board with the given id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*board.Board, error) {
	var (
		payload string
		version int64
	)
	err := s.db.QueryRowContext(ctx, "SELECT payload, version FROM boards WHERE id = ?", id).Scan(&payload, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %q: %w", id, err)
	}
	b, err := boardfile.Unmarshal([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("store: decode %q: %w", id, err)
	}
	b.Version = version
	return b, nil
}

// List returns a summary of every stored board ordered by id.
func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, version, updated_at FROM boards ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("store: list boards: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum Summary
			ts  string
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Version, &ts); err != nil {
			return nil, fmt.Errorf("store: scan board: %w", err)
		}
		updated, err := parseTimestamp(ts)
		if err != nil {
			return nil, fmt.Errorf("store: parse board timestamp: %w", err)
		}
		sum.UpdatedAt = updated
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate boards: %w", err)
	}
	return out, nil
}

// Save replaces the stored board b.ID, provided it is still at
// expectedVersion, and returns the stored copy with its version bumped.
func (s *SQLiteStore) Save(ctx context.Context, b *board.Board, expectedVersion int64) (*board.Board, error) {
	stored := b.Clone()
	stored.Version = expectedVersion + 1
	payload, err := boardfile.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("store: save %q: %w", b.ID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin tx for save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	const q = `UPDATE boards SET name = ?, version = ?, payload = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?`
	res, err := tx.ExecContext(ctx, q, stored.Name, stored.Version, string(payload), stored.ID, expectedVersion)
	if err != nil {
		return nil, fmt.Errorf("store: save %q: %w", b.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("store: save rows affected: %w", err)
	}
	if n == 0 {
		var current int64
		err := tx.QueryRowContext(ctx, "SELECT version FROM boards WHERE id = ?", b.ID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, b.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("store: verify version of %q: %w", b.ID, err)
		}
		return nil, fmt.Errorf("%w: %s is at version %d, expected %d", ErrVersionConflict, b.ID, current, expectedVersion)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit save: %w", err)
	}
	return stored, nil
}

// Delete removes the board with the given id.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM boards WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("store: delete %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// modernc.org/sqlite usually returns RFC 3339 for CURRENT_TIMESTAMP while
// canonical SQLite uses the space-separated form.
var timestampFormats = []string{
	time.RFC3339,
	time.DateTime,
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}
