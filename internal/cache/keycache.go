// Package cache holds the redis-backed lookup cache for the key
// validation hot path.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/botwall-io/botwall/internal/models"
)

// ErrMiss is returned when a key has no cached entry.
var ErrMiss = errors.New("cache miss")

// KeyCache caches api-key to site resolutions with a bounded TTL
// staleness window. Status changes must call Invalidate so revocation
// takes effect within one round trip rather than one TTL.
type KeyCache interface {
	Get(ctx context.Context, apiKey string) (*models.Site, error)
	Set(ctx context.Context, apiKey string, site *models.Site) error
	Invalidate(ctx context.Context, apiKey string) error
	Close() error
}

type redisKeyCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisKeyCache connects to redis and returns a KeyCache with the
// given TTL staleness window.
func NewRedisKeyCache(redisURL string, ttl time.Duration) (KeyCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &redisKeyCache{client: client, ttl: ttl}, nil
}

func cacheKey(apiKey string) string {
	return "keycache:" + apiKey
}

func (c *redisKeyCache) Get(ctx context.Context, apiKey string) (*models.Site, error) {
	data, err := c.client.Get(ctx, cacheKey(apiKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var site models.Site
	if err := json.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &site, nil
}

func (c *redisKeyCache) Set(ctx context.Context, apiKey string, site *models.Site) error {
	data, err := json.Marshal(site)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(apiKey), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *redisKeyCache) Invalidate(ctx context.Context, apiKey string) error {
	if err := c.client.Del(ctx, cacheKey(apiKey)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

func (c *redisKeyCache) Close() error {
	return c.client.Close()
}

// NoOpKeyCache always misses. Used when redis is disabled; validation
// falls through to the repository on every call.
type NoOpKeyCache struct{}

func (NoOpKeyCache) Get(ctx context.Context, apiKey string) (*models.Site, error) {
	return nil, ErrMiss
}

func (NoOpKeyCache) Set(ctx context.Context, apiKey string, site *models.Site) error { return nil }

func (NoOpKeyCache) Invalidate(ctx context.Context, apiKey string) error { return nil }

func (NoOpKeyCache) Close() error { return nil }
