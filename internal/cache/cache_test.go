package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nickpending/newsreel/internal/db"
	"github.com/nickpending/newsreel/internal/news"
)

// fakeClock is a manually advanced clock
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func sampleCollection() news.Collection {
	return news.Collection{
		{ID: "nocodb-2", Title: "Second", PublishedAt: "2024-01-02", Tags: []string{"AI"}},
		{ID: "nocodb-1", Title: "First", PublishedAt: "2024-01-01"},
	}
}

// exerciseStore runs the shared TTL behavior against any store
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := New(store, 2*time.Hour, WithClock(clock.Now), WithKey("test_news"))

	if _, ok, err := c.Get(ctx); err != nil || ok {
		t.Fatalf("Expected miss on empty cache, got ok=%v err=%v", ok, err)
	}
	if !c.IsExpired(ctx, clock.Now()) {
		t.Error("Expected empty cache to report expired")
	}

	if err := c.Set(ctx, sampleCollection()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	clock.Advance(time.Hour)
	got, ok, err := c.Get(ctx)
	if err != nil || !ok {
		t.Fatalf("Expected hit within TTL, got ok=%v err=%v", ok, err)
	}
	if len(got) != 2 || got[0].ID != "nocodb-2" || got[0].Tags[0] != "AI" {
		t.Errorf("Unexpected cached collection %+v", got)
	}
	if c.IsExpired(ctx, clock.Now()) {
		t.Error("Expected entry to be valid after one hour")
	}

	// Expiry boundary is inclusive
	if !c.IsExpired(ctx, clock.Now().Add(time.Hour)) {
		t.Error("Expected entry to be expired exactly at TTL")
	}

	clock.Advance(time.Hour)
	if _, ok, _ := c.Get(ctx); ok {
		t.Error("Expected miss once TTL elapsed")
	}

	clock.Advance(-time.Hour)
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if _, ok, _ := c.Get(ctx); ok {
		t.Error("Expected miss after invalidate")
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	if err := db.CloseDB(); err != nil {
		t.Fatalf("Failed to reset pool: %v", err)
	}
	db.SetPath(filepath.Join(t.TempDir(), "cache.db"))
	t.Cleanup(func() {
		db.CloseDB()
		db.SetPath("")
	})

	exerciseStore(t, NewSQLiteStore())
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("NEWSREEL_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 1})
	defer client.Close()

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		t.Skip("Redis not available, skipping integration test")
	}

	store := NewRedisStore(client, "newsreel:test:", time.Minute)
	t.Cleanup(func() { store.Delete(ctx, "test_news") })
	exerciseStore(t, store)
}

func TestNewDefaults(t *testing.T) {
	c := New(NewMemoryStore(), 0, WithKey(""))
	if c.TTL() != DefaultTTL {
		t.Errorf("Expected default TTL %v, got %v", DefaultTTL, c.TTL())
	}
	if c.key != DefaultKey {
		t.Errorf("Expected default key %q, got %q", DefaultKey, c.key)
	}
}

type failingStore struct{}

func (failingStore) Load(context.Context, string) (Entry, bool, error) {
	return Entry{}, false, errors.New("disk on fire")
}
func (failingStore) Save(context.Context, string, Entry) error { return errors.New("disk on fire") }
func (failingStore) Delete(context.Context, string) error     { return errors.New("disk on fire") }

func TestStoreErrorsAreWrapped(t *testing.T) {
	ctx := context.Background()
	c := New(failingStore{}, time.Hour)

	if _, _, err := c.Get(ctx); err == nil {
		t.Error("Expected Get to surface store error")
	}
	if err := c.Set(ctx, sampleCollection()); err == nil {
		t.Error("Expected Set to surface store error")
	}
	if err := c.Invalidate(ctx); err == nil {
		t.Error("Expected Invalidate to surface store error")
	}
	if !c.IsExpired(ctx, time.Now()) {
		t.Error("Expected load errors to count as expired")
	}
}
