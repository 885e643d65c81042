package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nickpending/newsreel/internal/db"
	"github.com/nickpending/newsreel/internal/news"
)

// SQLiteStore persists entries in the local database so the cache survives restarts
type SQLiteStore struct{}

// NewSQLiteStore creates a SQLiteStore backed by the shared connection pool
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

func (s *SQLiteStore) Load(ctx context.Context, key string) (Entry, bool, error) {
	row, err := db.GetCacheEntry(ctx, key)
	if err != nil {
		return Entry{}, false, err
	}
	if row == nil {
		return Entry{}, false, nil
	}

	var collection news.Collection
	if err := json.Unmarshal(row.Payload, &collection); err != nil {
		// A corrupt payload is treated as a miss; the next fetch overwrites it
		return Entry{}, false, nil
	}
	return Entry{Collection: collection, StoredAt: row.StoredAt}, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, key string, entry Entry) error {
	payload, err := json.Marshal(entry.Collection)
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}
	return db.PutCacheEntry(ctx, db.CacheEntry{Key: key, Payload: payload, StoredAt: entry.StoredAt})
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	return db.DeleteCacheEntry(ctx, key)
}
