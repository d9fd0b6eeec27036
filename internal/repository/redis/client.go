package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultIndexTTL bounds how long an unused index snapshot is kept.
const DefaultIndexTTL = 24 * time.Hour

// Client wraps the Redis client for path-index caching.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient creates a Redis client from a connection URL.
func NewClient(ctx context.Context, redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{rdb: rdb, ttl: DefaultIndexTTL}, nil
}

// NewClientFromPool wraps an existing redis.Client for use in tests.
func NewClientFromPool(rdb *redis.Client) *Client {
	return &Client{rdb: rdb, ttl: DefaultIndexTTL}
}

// SetTTL changes the expiry applied to stored snapshots. Zero keeps them forever.
func (c *Client) SetTTL(ttl time.Duration) {
	c.ttl = ttl
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
