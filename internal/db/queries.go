package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// CacheEntry is one row of the cache_entries table
type CacheEntry struct {
	Key      string
	Payload  []byte    // JSON-encoded news collection
	StoredAt time.Time // Stored as unix milliseconds
}

// GetCacheEntry loads the entry for key. A missing entry returns nil and no error.
func GetCacheEntry(ctx context.Context, key string) (*CacheEntry, error) {
	db, err := GetDB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	// Note: Don't close the pool connection - it's managed globally

	query, args, err := sq.Select("key", "payload", "stored_at").
		From("cache_entries").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var (
		entry    CacheEntry
		storedAt int64
	)
	err = db.QueryRowContext(ctx, query, args...).Scan(&entry.Key, &entry.Payload, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// A cold cache is the normal first-run state
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cache entry: %w", err)
	}

	entry.StoredAt = time.UnixMilli(storedAt)
	return &entry, nil
}

// PutCacheEntry inserts or replaces the entry for entry.Key
func PutCacheEntry(ctx context.Context, entry CacheEntry) error {
	db, err := GetDB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	// Upsert so a refresh overwrites the single cached collection in place
	query, args, err := sq.Insert("cache_entries").
		Columns("key", "payload", "stored_at").
		Values(entry.Key, entry.Payload, entry.StoredAt.UnixMilli()).
		Suffix("ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, stored_at = excluded.stored_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// DeleteCacheEntry removes the entry for key; deleting a missing key is not an error
func DeleteCacheEntry(ctx context.Context, key string) error {
	db, err := GetDB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	query, args, err := sq.Delete("cache_entries").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}
