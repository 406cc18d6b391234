package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "metrics:session:"

// Cache stores encoded responses keyed by a digest of the request.
// A Cache with no redis client is a no-op.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache wraps rdb; ttl <= 0 keeps entries until evicted
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// Key derives the cache key for a normalized request body
func Key(body []byte) string {
	sum := sha256.Sum256(body)
	return cachePrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached response, or ok=false on a miss
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c == nil || c.rdb == nil {
		return nil, false, nil
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a response
func (c *Cache) Set(ctx context.Context, key string, data []byte) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Set(ctx, key, data, c.ttl).Err()
}
