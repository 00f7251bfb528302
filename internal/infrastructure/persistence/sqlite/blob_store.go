// Package sqlite stores note history blobs in a single key/value table.
// Both the cgo driver (mattn/go-sqlite3, "sqlite3") and the pure Go driver
// (modernc.org/sqlite, "sqlite") are registered; the caller picks one.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/YoshitsuguKoike/noterefiner/internal/domain/repository"
)

// Driver names accepted by Open
const (
	DriverCGO    = "sqlite3"
	DriverPureGo = "sqlite"
)

// BlobStore implements repository.BlobStore on a SQLite table
type BlobStore struct {
	db *sql.DB
}

// Open opens (and migrates) the database at dsn with the named driver
func Open(driver, dsn string) (*BlobStore, error) {
	switch driver {
	case DriverCGO, DriverPureGo:
	case "":
		driver = DriverPureGo
	default:
		return nil, fmt.Errorf("unknown sqlite driver %q (supported: %s, %s)", driver, DriverCGO, DriverPureGo)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	// One writer; also keeps :memory: databases on a single connection.
	db.SetMaxOpenConns(1)

	if err := NewMigrator(db).Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &BlobStore{db: db}, nil
}

// NewBlobStore wraps an already migrated database
func NewBlobStore(db *sql.DB) *BlobStore {
	return &BlobStore{db: db}
}

// Read returns the blob stored under key
func (s *BlobStore) Read(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM blobs WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read blob %q: %w", key, err)
	}
	return value, nil
}

// Write upserts the blob under key in a single statement
func (s *BlobStore) Write(ctx context.Context, key string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, data)
	if err != nil {
		return fmt.Errorf("write blob %q: %w", key, err)
	}
	return nil
}

// Close closes the database
func (s *BlobStore) Close() error {
	return s.db.Close()
}
