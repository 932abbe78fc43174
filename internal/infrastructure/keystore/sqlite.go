package keystore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/anant-society/membership-api/internal/domain"
)

// SQLiteStore is the durable relational-emulation backend. It has no TTL
// concept: values persist until an explicit Delete, and callers who need
// expiry must check the age of what they stored. Storage faults never reach
// the caller raw. The cause is logged and the weakest safe answer returned.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM key_values WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		slog.Error("keystore get", "backend", "sqlite", "err", err)
		return "", domain.ErrStoreUnavailable
	}
	return value, nil
}

// Set upserts in a single statement, so a concurrent Set for the same key
// is last-write-wins with no lost-update window. The ttl argument is
// ignored here.
func (s *SQLiteStore) Set(ctx context.Context, key, value string, _ time.Duration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO key_values (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		slog.Error("keystore set", "backend", "sqlite", "err", err)
		return domain.ErrStoreUnavailable
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM key_values WHERE key = ?`, key)
	if err != nil {
		slog.Error("keystore delete", "backend", "sqlite", "err", err)
		return domain.ErrStoreUnavailable
	}
	return nil
}
