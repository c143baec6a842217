package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "followup"

// Cache is a Redis-backed cache with named layers, per-entry TTL and
// pattern invalidation. Keys are namespaced as followup:<layer>:<key>.
type Cache struct {
	rdb *redis.Client

	hits   int64
	misses int64
}

// New connects to Redis and verifies the connection
func New(addr, password string, db int) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Cache{rdb: rdb}, nil
}

// Close closes the underlying Redis connection
func (c *Cache) Close() error {
	return c.rdb.Close()
}

func (c *Cache) fullKey(layer, key string) string {
	return keyPrefix + ":" + layer + ":" + key
}

// GetJSON fetches a cached value into dest. Returns false on a miss.
// A corrupt cached entry is treated as a miss after logging.
func (c *Cache) GetJSON(ctx context.Context, layer, key string, dest interface{}) (bool, error) {
	data, err := c.rdb.Get(ctx, c.fullKey(layer, key)).Bytes()
	if err == redis.Nil {
		atomic.AddInt64(&c.misses, 1)
		return false, nil
	}
	if err != nil {
		atomic.AddInt64(&c.misses, 1)
		return false, fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("[Cache] corrupt entry %s/%s, treating as miss: %v", layer, key, err)
		atomic.AddInt64(&c.misses, 1)
		return false, nil
	}

	atomic.AddInt64(&c.hits, 1)
	return true, nil
}

// SetJSON stores a value under the given layer and key with a TTL
func (c *Cache) SetJSON(ctx context.Context, layer, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}
	if err := c.rdb.Set(ctx, c.fullKey(layer, key), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

// Delete removes a single entry
func (c *Cache) Delete(ctx context.Context, layer, key string) error {
	return c.rdb.Del(ctx, c.fullKey(layer, key)).Err()
}

// InvalidateLayer removes every entry in a layer, returning the count removed
func (c *Cache) InvalidateLayer(ctx context.Context, layer string) (int, error) {
	return c.invalidate(ctx, c.fullKey(layer, "*"))
}

// InvalidatePattern removes entries matching a glob pattern within a layer
func (c *Cache) InvalidatePattern(ctx context.Context, layer, pattern string) (int, error) {
	return c.invalidate(ctx, c.fullKey(layer, pattern))
}

func (c *Cache) invalidate(ctx context.Context, pattern string) (int, error) {
	var removed int
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, fmt.Errorf("cache invalidate failed: %w", err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("cache scan failed: %w", err)
	}
	return removed, nil
}

// Stats returns cumulative hit and miss counts
func (c *Cache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}
