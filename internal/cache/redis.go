package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	return json.Unmarshal([]byte(val), dest)
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

const reindexLockKey = "reindex:lock"

// ErrReindexRunning is returned when a bulk reindex already holds the lock.
var ErrReindexRunning = errors.New("a bulk reindex is already running")

// AcquireReindexLock takes the single-flight lock for bulk reindex runs.
// The TTL guards against a crashed holder; the returned release func clears
// the lock early on a clean finish.
func (c *Cache) AcquireReindexLock(ctx context.Context, ttl time.Duration) (release func(), err error) {
	ok, err := c.client.SetNX(ctx, reindexLockKey, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire reindex lock: %w", err)
	}
	if !ok {
		return nil, ErrReindexRunning
	}
	return func() {
		// Expiry cleans up if this fails.
		_ = c.client.Del(context.Background(), reindexLockKey).Err()
	}, nil
}
