package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fincal/internal/store"

	_ "modernc.org/sqlite"
)

// SQLiteDB is a migrated SQLite database holding key/value blobs.
type SQLiteDB struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dbPath and runs
// the migrations.
func OpenSQLite(dbPath string) (*SQLiteDB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteDB{db: db}, nil
}

func (s *SQLiteDB) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Blob returns the blob stored under key.
func (s *SQLiteDB) Blob(key string) *SQLiteBlob {
	return &SQLiteBlob{db: s.db, key: key}
}

// SQLiteBlob implements store.Blob on one row of the kv table.
type SQLiteBlob struct {
	db  *sql.DB
	key string
}

var _ store.Blob = (*SQLiteBlob)(nil)

func (b *SQLiteBlob) Read(ctx context.Context) ([]byte, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, b.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read key %s: %w", b.key, err)
	}
	return value, nil
}

func (b *SQLiteBlob) Write(ctx context.Context, data []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		b.key, data)
	if err != nil {
		return fmt.Errorf("write key %s: %w", b.key, err)
	}
	return nil
}
