package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares the cache between instances through Redis
type RedisStore struct {
	client *redis.Client
	prefix string
	expiry time.Duration // Redis-side expiry, 0 keeps keys forever
}

// NewRedisStore creates a RedisStore. Keys are namespaced with prefix and
// expire server-side after expiry so abandoned entries don't linger.
func NewRedisStore(client *redis.Client, prefix string, expiry time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, expiry: expiry}
}

func (s *RedisStore) Load(ctx context.Context, key string) (Entry, bool, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	// redis.Nil means the key is absent or expired server-side
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Written by an incompatible version; treat as a miss and let Save replace it
		return Entry{}, false, nil
	}
	return entry, true, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}
	// SET replaces the value and resets the expiry in one round trip
	if err := s.client.Set(ctx, s.prefix+key, data, s.expiry).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
