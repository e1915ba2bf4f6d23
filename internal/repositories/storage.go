package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/reelx/internal/shared"
)

// Entry is one persisted key with its last write time.
type Entry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// SQLiteStorage persists client state in the local_storage table.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new [SQLiteStorage] with the given database connection
func NewSQLiteStorage(db *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db}
}

// Get returns the value for key, or [shared.ErrKeyNotFound].
func (s *SQLiteStorage) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", shared.ErrKeyNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query key %s: %w", key, err)
	}
	return value, nil
}

// Set inserts or replaces the value for key.
func (s *SQLiteStorage) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO local_storage (key, value, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, query, key, value, now, now); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Delete removes keys in one transaction. Missing keys are ignored.
func (s *SQLiteStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM local_storage WHERE key = ?`, key); err != nil {
			return fmt.Errorf("failed to delete key %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// Entries lists persisted keys, most recently written first.
func (s *SQLiteStorage) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value, updated_at FROM local_storage ORDER BY updated_at DESC, key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating keys: %w", err)
	}
	return entries, nil
}
