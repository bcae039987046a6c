package store

import (
	"context"
	"fmt"
	"time"
)

// IncrementWindow implements netutil.WindowCounter: it increments key's
// counter and, on first touch, sets the window's TTL so the counter resets
// itself.
func (c *Client) IncrementWindow(ctx context.Context, key string, windowSeconds int) (int64, error) {
	count, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("incrementing window counter %q: %w", key, err)
	}
	if count == 1 {
		if err := c.rdb.Expire(ctx, key, time.Duration(windowSeconds)*time.Second).Err(); err != nil {
			return 0, fmt.Errorf("setting expiry on window counter %q: %w", key, err)
		}
	}
	return count, nil
}
