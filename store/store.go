// Package store persists session snapshots in SQLite, keyed by profile id.
// The snapshot bytes come from engine/save; this package never inspects
// them.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a profile has no stored snapshot.
var ErrNotFound = errors.New("snapshot not found")

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	profile_id    TEXT PRIMARY KEY,
	module_id     TEXT NOT NULL,
	updated_at_ms INTEGER NOT NULL,
	state         BLOB NOT NULL
);`

// Store persists snapshots in a single SQLite file.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (and if needed creates) the snapshot database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Put upserts the snapshot for a profile.
func (s *Store) Put(ctx context.Context, profileID, moduleID string, snapshot []byte) error {
	if strings.TrimSpace(profileID) == "" {
		return fmt.Errorf("profile id is required")
	}
	_, err := s.sqlDB.ExecContext(ctx, `
		INSERT INTO snapshots (profile_id, module_id, updated_at_ms, state)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(profile_id) DO UPDATE SET
			module_id = excluded.module_id,
			updated_at_ms = excluded.updated_at_ms,
			state = excluded.state`,
		profileID, moduleID, time.Now().UTC().UnixMilli(), snapshot)
	if err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}

// Get returns the stored snapshot bytes for a profile.
func (s *Store) Get(ctx context.Context, profileID string) ([]byte, error) {
	var snapshot []byte
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT state FROM snapshots WHERE profile_id = ?`, profileID).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snapshot, nil
}

// Delete removes a profile's snapshot. Deleting a missing profile is not an
// error.
func (s *Store) Delete(ctx context.Context, profileID string) error {
	if _, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM snapshots WHERE profile_id = ?`, profileID); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
