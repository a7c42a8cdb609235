package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client wraps a go-redis client used for short-lived response caching.
type Client struct {
	*redis.Client
	logger *zap.Logger
}

// NewClient creates a Redis client and verifies connectivity.
func NewClient(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("redis client connected", zap.String("addr", addr))
	return &Client{Client: rdb, logger: logger}, nil
}

// Wrap creates a Client around an existing go-redis client. Used by tests.
func Wrap(rdb *redis.Client, logger *zap.Logger) *Client {
	return &Client{Client: rdb, logger: logger}
}

// GetString returns the cached value for key, or ("", false) on miss or error.
// Cache errors are logged and treated as misses.
func (c *Client) GetString(ctx context.Context, key string) (string, bool) {
	v, err := c.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return v, true
}

// SetString stores value under key with the given TTL, best effort.
func (c *Client) SetString(ctx context.Context, key, value string, ttl time.Duration) {
	if err := c.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}
