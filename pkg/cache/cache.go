// Package cache provides the best-effort secondary cache for editor
// content, backed by redis. It is never required for correctness; a nil
// *Cache is a valid no-op instance.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "editor:"

// Cache stores decoded editor content under a TTL for fast reads.
type Cache struct {
	client *redis.Client
}

// Config contains connection options for the cache.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// New connects to redis and verifies the connection. An empty Addr returns
// a nil cache, which disables caching.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// NewWithClient wraps an existing redis client. Used by tests.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Put stores content under the document id with the given TTL.
func (c *Cache) Put(ctx context.Context, id, content string, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	if err := c.client.Set(ctx, keyPrefix+id, content, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache document %s: %w", id, err)
	}
	return nil
}

// Get returns the cached content for a document id. found is false on a
// miss.
func (c *Cache) Get(ctx context.Context, id string) (string, bool, error) {
	if c == nil {
		return "", false, nil
	}
	val, err := c.client.Get(ctx, keyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read cached document %s: %w", id, err)
	}
	return val, true, nil
}

// Delete removes the cache entry for a document id.
func (c *Cache) Delete(ctx context.Context, id string) error {
	if c == nil {
		return nil
	}
	if err := c.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete cached document %s: %w", id, err)
	}
	return nil
}

// Close closes the redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
