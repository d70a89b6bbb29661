// Package bunstore persists the key-value contract in a single SQLite table
// via Bun. Desktop and kiosk builds use it to carry the session across
// restarts without an external service.
package bunstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Entry is a single key-value row.
type Entry struct {
	bun.BaseModel `bun:"table:credential_slots,alias:cs"`
	Key           string     `bun:"key,pk"`
	Value         string     `bun:"value,notnull"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

// Store is a Bun-backed key-value store.
type Store struct {
	db      *bun.DB
	timeout time.Duration
}

// Open creates (or opens) the SQLite database at dsn and ensures the
// backing table exists. Use ":memory:" for an ephemeral store.
func Open(dsn string) (*Store, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	store := &Store{db: db, timeout: 5 * time.Second}

	ctx, cancel := store.operationContext()
	defer cancel()

	if _, err := db.NewCreateTable().
		Model((*Entry)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// NewWithDB wraps an existing Bun handle; the caller owns the schema.
func NewWithDB(db *bun.DB) *Store {
	return &Store{db: db, timeout: 5 * time.Second}
}

// Get returns the value for key, reporting presence. Read errors degrade to
// absent so a broken local database reads as an anonymous session.
func (s *Store) Get(key string) (string, bool) {
	ctx, cancel := s.operationContext()
	defer cancel()

	entry := &Entry{}
	err := s.db.NewSelect().
		Model(entry).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		return "", false
	}
	return entry.Value, true
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key, value string) {
	ctx, cancel := s.operationContext()
	defer cancel()

	now := time.Now()
	entry := &Entry{Key: key, Value: value, UpdatedAt: &now}

	s.db.NewInsert().
		Model(entry).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
}

// Remove deletes key. Removing an absent key is a no-op.
func (s *Store) Remove(key string) {
	ctx, cancel := s.operationContext()
	defer cancel()

	s.db.NewDelete().
		Model((*Entry)(nil)).
		Where("key = ?", key).
		Exec(ctx)
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) operationContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}
