package prefs

import (
	"context"
	"database/sql"
	"sync"

	"github.com/teranos/graphstyle/errors"
)

// Storage is the durable key/value backend. Read returns an error
// matching errors.ErrNotFound when the key was never written.
type Storage interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
}

// SQLiteStorage keeps records in the preferences table (see db migrations)
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates storage over a migrated database
func NewSQLiteStorage(db *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db}
}

// Read returns the record stored under key
func (s *SQLiteStorage) Read(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("preference record %q", key)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read preference record %q", key)
	}
	return []byte(value), nil
}

// Write overwrites the record stored under key
func (s *SQLiteStorage) Write(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(data))
	if err != nil {
		return errors.Wrapf(err, "failed to write preference record %q", key)
	}
	return nil
}

// MemoryStorage is a process-local Storage, used by tests and by
// 'graphstyle serve --ephemeral'
type MemoryStorage struct {
	mu      sync.Mutex
	records map[string][]byte
	writes  int
}

// NewMemoryStorage creates an empty storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string][]byte)}
}

// Read returns a copy of the record under key
func (m *MemoryStorage) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.records[key]
	if !ok {
		return nil, errors.NewNotFoundError("preference record %q", key)
	}
	return append([]byte(nil), data...), nil
}

// Write stores a copy of data under key
func (m *MemoryStorage) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = append([]byte(nil), data...)
	m.writes++
	return nil
}

// Writes returns the number of successful writes
func (m *MemoryStorage) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
