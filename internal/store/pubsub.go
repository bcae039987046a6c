package store

import (
	"context"
	"fmt"
)

const sessionEvictionChannel = "session:evicted"

// PublishSessionEviction announces on the eviction channel that a session id
// is no longer valid. No service in this repository subscribes to that
// channel, so a connection still holding the session is not dropped by it.
func (c *Client) PublishSessionEviction(ctx context.Context, sessionID string) error {
	if err := c.rdb.Publish(ctx, sessionEvictionChannel, sessionID).Err(); err != nil {
		return fmt.Errorf("publishing session eviction for %s: %w", sessionID, err)
	}
	return nil
}

// SubscribeSessionEvictions returns a channel of evicted session ids. The
// caller must eventually call the returned cancel func to close the
// subscription.
func (c *Client) SubscribeSessionEvictions(ctx context.Context) (<-chan string, func() error) {
	sub := c.rdb.Subscribe(ctx, sessionEvictionChannel)
	out := make(chan string)

	go func() {
		defer close(out)
		ch := sub.Channel()
		for msg := range ch {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, sub.Close
}
