package alerts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dgnsrekt/market-clock/internal/database"
)

// SQLiteStore keeps markers in the dedup_markers table.
// Expired rows are ignored on read and removed by PurgeExpired.
type SQLiteStore struct {
	db  *database.DB
	now func() time.Time
}

// NewSQLiteStore wraps an already migrated database.
func NewSQLiteStore(db *database.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

func (s *SQLiteStore) expiry(ttl time.Duration) int64 {
	return s.now().Add(ttl).Unix()
}

// Set upserts value and resets its expiry
func (s *SQLiteStore) Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	if err := checkNamespace(namespace); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dedup_markers (namespace, key, payload, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET
			payload = excluded.payload,
			expires_at = excluded.expires_at
	`, namespace, key, value, s.expiry(ttl))
	if err != nil {
		return fmt.Errorf("failed to set marker: %w", err)
	}
	return nil
}

// SetIfAbsent inserts value unless an unexpired row exists.
// An expired row is overwritten in the same statement.
func (s *SQLiteStore) SetIfAbsent(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) (bool, error) {
	if err := checkNamespace(namespace); err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO dedup_markers (namespace, key, payload, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET
			payload = excluded.payload,
			expires_at = excluded.expires_at
		WHERE dedup_markers.expires_at <= ?
	`, namespace, key, value, s.expiry(ttl), s.now().Unix())
	if err != nil {
		return false, fmt.Errorf("failed to claim marker: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to claim marker: %w", err)
	}
	return n > 0, nil
}

// Get returns the unexpired payload
func (s *SQLiteStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	if err := checkNamespace(namespace); err != nil {
		return nil, false, err
	}
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM dedup_markers
		WHERE namespace = ? AND key = ? AND expires_at > ?
	`, namespace, key, s.now().Unix()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get marker: %w", err)
	}
	return payload, true, nil
}

// Exists reports whether an unexpired row exists
func (s *SQLiteStore) Exists(ctx context.Context, namespace, key string) (bool, error) {
	_, ok, err := s.Get(ctx, namespace, key)
	return ok, err
}

// Delete removes the row
func (s *SQLiteStore) Delete(ctx context.Context, namespace, key string) error {
	if err := checkNamespace(namespace); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM dedup_markers WHERE namespace = ? AND key = ?`, namespace, key); err != nil {
		return fmt.Errorf("failed to delete marker: %w", err)
	}
	return nil
}

// PurgeExpired deletes expired rows and returns how many were removed
func (s *SQLiteStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM dedup_markers WHERE expires_at <= ?`, s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired markers: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired markers: %w", err)
	}
	return n, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying database
func (s *SQLiteStore) DB() *database.DB {
	return s.db
}
