// Package store wraps the shared Redis-compatible store used across all
// four services for session state, rate-limit counters, character cache,
// dirty markers, and presence tracking.
package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Client wraps a redis.Client with the key-space conventions used by this
// repo's services. All methods take a context so callers can bound RPC-style
// calls with the same deadlines they use for network I/O.
type Client struct {
	rdb *redis.Client
}

// New connects to the shared store at addr (host:port), selecting database
// db and authenticating with password if non-empty.
func New(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Client{rdb: rdb}, nil
}

// Ping verifies connectivity to the store.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging shared store: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Raw exposes the underlying redis.Client for call sites that need an
// operation this wrapper does not cover.
func (c *Client) Raw() *redis.Client {
	return c.rdb
}
