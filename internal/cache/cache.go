// Package cache stores rendered GET responses. Entries are grouped by
// resource so a write can drop every cached view of that resource at once.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a byte store with per-resource invalidation.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Invalidate drops every entry stored for resource.
	Invalidate(ctx context.Context, resource string) error
	// Key builds the entry key for one request signature under resource.
	Key(resource string, parts ...string) string
}

// RedisCache keeps entries in Redis as "<prefix>:<resource>:<sha1>".
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a RedisCache. An empty prefix defaults to "cache".
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "cache"
	}
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Key(resource string, parts ...string) string {
	return buildKey(c.prefix, resource, parts)
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Invalidate walks the resource's keys with SCAN so large keyspaces never
// block the server.
func (c *RedisCache) Invalidate(ctx context.Context, resource string) error {
	pattern := fmt.Sprintf("%s:%s:*", c.prefix, resource)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()

	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.client.Del(ctx, batch...).Err()
	}
	return nil
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Noop) Invalidate(context.Context, string) error { return nil }
func (Noop) Key(resource string, parts ...string) string { return buildKey("noop", resource, parts) }

func buildKey(prefix, resource string, parts []string) string {
	h := sha1.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%s:%s:%s", prefix, resource, hex.EncodeToString(h.Sum(nil)))
}
