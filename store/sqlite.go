// Package store holds persistent pdata.Store implementations.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/oriumgames/pdata"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS holder_data (
	id         TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLite is a pdata.Store saving NBT-encoded containers in a SQLite
// database.
type SQLite struct {
	db *sql.DB
}

// Compile-time check that SQLite implements pdata.Store.
var _ pdata.Store = (*SQLite)(nil)

// OpenSQLite opens the database at path, creating it and its table if
// needed.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	s, err := NewSQLite(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLite returns a store using an open database, creating its table if
// needed.
func NewSQLite(db *sql.DB) (*SQLite, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create holder_data table: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the underlying SQLite connection.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Name implements pdata.Store.
func (s *SQLite) Name() string { return "sqlite" }

// Load implements pdata.Store.
func (s *SQLite) Load(ctx context.Context, id string) (pdata.Container, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM holder_data WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	return pdata.DecodeNBT(data)
}

// Save implements pdata.Store.
func (s *SQLite) Save(ctx context.Context, id string, c pdata.Container) error {
	data, err := c.EncodeNBT()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO holder_data (id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		id, data, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}
	return nil
}

// Delete implements pdata.Store.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM holder_data WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

// UpdatedAt returns when the container saved under id was last written.
func (s *SQLite) UpdatedAt(ctx context.Context, id string) (time.Time, bool, error) {
	var ms int64
	err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM holder_data WHERE id = ?`, id).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("updated at %s: %w", id, err)
	}
	return time.UnixMilli(ms), true, nil
}
