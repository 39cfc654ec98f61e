// Package cache holds the Redis read-through cache for the public listings.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	KeyTopics     = "quantumflux:topics"
	KeyCategories = "quantumflux:categories"
	KeyTags       = "quantumflux:tags"
)

// AllKeys lists every listing key, for invalidation after topic writes.
var AllKeys = []string{KeyTopics, KeyCategories, KeyTags}

type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListingCache connects to redisURL and verifies the connection.
func NewListingCache(ctx context.Context, redisURL string, ttl time.Duration) (*ListingCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &ListingCache{client: client, ttl: ttl}, nil
}

// NewListingCacheWithClient wraps an existing client.
func NewListingCacheWithClient(client *redis.Client, ttl time.Duration) *ListingCache {
	return &ListingCache{client: client, ttl: ttl}
}

// Get decodes the cached value at key into dest. A miss returns false with a nil error.
// A nil cache always misses.
func (c *ListingCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

// Version returns the invalidation counter of key. Read it before loading the
// value from the database and pass it to SetIfVersion.
func (c *ListingCache) Version(ctx context.Context, key string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	v, err := c.client.Get(ctx, versionKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache version %s: %w", key, err)
	}
	return v, nil
}

var errStaleVersion = errors.New("listing invalidated since read")

// SetIfVersion stores value at key as JSON with the configured TTL, unless key
// was invalidated after version was read. It reports whether the value was stored.
func (c *ListingCache) SetIfVersion(ctx context.Context, key string, version int64, value interface{}) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("cache encode %s: %w", key, err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey(key)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleVersion
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, c.ttl)
			return nil
		})
		return err
	}, versionKey(key))

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errStaleVersion), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, fmt.Errorf("cache set %s: %w", key, err)
	}
}

// Invalidate drops keys and bumps their versions so fills that started
// before this call are discarded.
func (c *ListingCache) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || c.client == nil || len(keys) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Incr(ctx, versionKey(key))
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

func versionKey(key string) string {
	return key + ":version"
}

func (c *ListingCache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func (c *ListingCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
