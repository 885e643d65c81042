// Package cache keeps the last fetched news collection for a fixed time-to-live.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/nickpending/newsreel/internal/news"
)

const (
	// DefaultKey is the single key the collection is stored under
	DefaultKey = "news_collection"
	// DefaultTTL matches how often upstream content meaningfully changes
	DefaultTTL = 2 * time.Hour
)

// Entry is a cached collection with the time it was stored
type Entry struct {
	Collection news.Collection `json:"data"`
	StoredAt   time.Time       `json:"timestamp"`
}

// Store persists cache entries. Implementations must be safe for concurrent use.
type Store interface {
	// Load returns the entry for key; ok is false when there is none
	Load(ctx context.Context, key string) (entry Entry, ok bool, err error)
	Save(ctx context.Context, key string, entry Entry) error
	Delete(ctx context.Context, key string) error
}

// Cache is a single-entry TTL cache with an injectable clock
type Cache struct {
	store Store
	ttl   time.Duration
	key   string
	now   func() time.Time
}

// Option customizes a Cache
type Option func(*Cache)

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithKey stores the collection under a different key
func WithKey(key string) Option {
	return func(c *Cache) {
		if key != "" {
			c.key = key
		}
	}
}

// New creates a Cache over store. A non-positive ttl selects DefaultTTL.
func New(store Store, ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		store: store,
		ttl:   ttl,
		key:   DefaultKey,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the configured time-to-live
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached collection when present and not expired
func (c *Cache) Get(ctx context.Context) (news.Collection, bool, error) {
	entry, ok, err := c.store.Load(ctx, c.key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load cache: %w", err)
	}
	if !ok || c.expired(entry, c.now()) {
		return nil, false, nil
	}
	return entry.Collection, true, nil
}

// Set stores the collection stamped with the current time
func (c *Cache) Set(ctx context.Context, collection news.Collection) error {
	entry := Entry{Collection: collection, StoredAt: c.now()}
	if err := c.store.Save(ctx, c.key, entry); err != nil {
		return fmt.Errorf("failed to save cache: %w", err)
	}
	return nil
}

// IsExpired reports whether the cache holds no entry that is still valid at now.
// Load errors count as expired.
func (c *Cache) IsExpired(ctx context.Context, now time.Time) bool {
	entry, ok, err := c.store.Load(ctx, c.key)
	if err != nil || !ok {
		return true
	}
	return c.expired(entry, now)
}

// Invalidate drops the cached entry
func (c *Cache) Invalidate(ctx context.Context) error {
	if err := c.store.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

func (c *Cache) expired(entry Entry, now time.Time) bool {
	return now.Sub(entry.StoredAt) >= c.ttl
}
