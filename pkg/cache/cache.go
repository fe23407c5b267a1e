// Package cache wraps Redis behind a small get/set/incr surface. A broken or
// absent Redis degrades to cache misses instead of failing requests; the
// throttles built on it simply stop throttling.
package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a thin Redis wrapper. The zero value and a nil *Cache are both
// usable no-ops.
type Cache struct {
	rdb *redis.Client
}

// New connects to Redis at the given URL (redis://host:port/db). On any
// connection problem the cache is returned disabled rather than failing
// startup.
func New(url string) *Cache {
	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("Warning: invalid Redis URL %q: %v, caching disabled", url, err)
		return &Cache{}
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis connection failed: %v, caching disabled", err)
		return &Cache{}
	}
	return &Cache{rdb: rdb}
}

func (c *Cache) enabled() bool {
	return c != nil && c.rdb != nil
}

// Get returns the cached value and whether it was present.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if !c.enabled() {
		return "", false
	}
	value, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Cache get error for key %s: %v", key, err)
		}
		return "", false
	}
	return value, true
}

// Set stores a value with the given TTL (0 means no expiry).
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) bool {
	if !c.enabled() {
		return false
	}
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("Cache set error for key %s: %v", key, err)
		return false
	}
	return true
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) bool {
	if !c.enabled() {
		return false
	}
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		log.Printf("Cache delete error for key %s: %v", key, err)
		return false
	}
	return true
}

// Incr increments a counter, starting a fixed window of the given length on
// first increment. It returns the counter value and whether the counter is
// live; with the cache disabled it reports not-live and callers skip
// throttling.
func (c *Cache) Incr(ctx context.Context, key string, window time.Duration) (int64, bool) {
	if !c.enabled() {
		return 0, false
	}
	count, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("Cache increment error for key %s: %v", key, err)
		return 0, false
	}
	if count == 1 && window > 0 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			log.Printf("Cache expire error for key %s: %v", key, err)
		}
	}
	return count, true
}

// Exists reports whether the key is present.
func (c *Cache) Exists(ctx context.Context, key string) bool {
	if !c.enabled() {
		return false
	}
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		log.Printf("Cache exists error for key %s: %v", key, err)
		return false
	}
	return n > 0
}
