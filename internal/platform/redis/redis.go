package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/config"
	"github.com/redis/go-redis/v9"
)

// Client represents a Redis client
type Client struct {
	*redis.Client
}

// New creates a new Redis client
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("unable to connect to Redis: %w", err)
	}

	return &Client{Client: rdb}, nil
}

// Health checks the Redis health
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// TryLock attempts to acquire a distributed lock under key for ttl, returning true if
// acquired. Used by the scheduler to guarantee single-instance execution of a
// periodic job across horizontally-scaled workers.
func (c *Client) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Unlock releases a lock acquired by TryLock. Best-effort: if the lock already expired
// this is a no-op.
func (c *Client) Unlock(ctx context.Context, key string) error {
	return c.Del(ctx, key).Err()
}
