package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"neurograph/pkg/errors"
	"neurograph/pkg/logger"
)

// Client wraps the Redis connection for the advisory cache. Entries are
// written with fixed TTLs and expire on their own; the graph store stays
// authoritative.
type Client struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewClient creates a cache client for the given host:port address.
func NewClient(addr string) *Client {
	return &Client{
		rdb:    redis.NewClient(&redis.Options{Addr: addr}),
		logger: logger.Get(),
	}
}

// Ping probes the cache store.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return errors.NewCacheUnavailable(c.rdb.Options().Addr, err)
	}
	return nil
}

// Get returns the value for key and whether it was present.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.NewCacheUnavailable(c.rdb.Options().Addr, err)
	}
	return val, true, nil
}

// Set writes key with the given TTL.
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.NewCacheUnavailable(c.rdb.Options().Addr, err)
	}
	return nil
}

// IncrScore increments member's score by one in the sorted set at key.
func (c *Client) IncrScore(ctx context.Context, key, member string) error {
	if err := c.rdb.ZIncrBy(ctx, key, 1, member).Err(); err != nil {
		return errors.NewCacheUnavailable(c.rdb.Options().Addr, err)
	}
	return nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
