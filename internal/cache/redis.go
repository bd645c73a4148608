// Package cache stores structured resumes and jobs keyed by the generator and
// text they were structured from, so repeated runs over the same input skip
// the generator.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key written by this package.
const KeyPrefix = "tailor:structured:"

// Options configure the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Connect opens a client and pings it.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// Key returns the cache key for the structured document identified by id.
func Key(kind, id string) string {
	return KeyPrefix + kind + ":" + ingestion.ContentHash(kind, id)
}

// RedisCache is a structure cache backed by Redis. Values are opaque JSON;
// callers validate them on read.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps client. A zero ttl keeps entries until evicted.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached value for kind and id. ok is false on a miss.
func (c *RedisCache) Get(ctx context.Context, kind, id string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, Key(kind, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", kind, err)
	}
	return val, true, nil
}

// Put stores value for kind and id.
func (c *RedisCache) Put(ctx context.Context, kind, id string, value []byte) error {
	if err := c.client.Set(ctx, Key(kind, id), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache put %s: %w", kind, err)
	}
	return nil
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
