package netutil

import (
	"context"
	"fmt"
)

// WindowCounter increments a named fixed window counter and returns its new
// value, creating the window (with the given TTL) on first touch. Backed by
// the shared store's INCR+EXPIRE pattern.
type WindowCounter interface {
	IncrementWindow(ctx context.Context, key string, windowSeconds int) (int64, error)
}

// RateLimit is a fixed-window rate limiter: at most Threshold events per
// WindowSeconds for a given key.
type RateLimit struct {
	counter       WindowCounter
	threshold     int64
	windowSeconds int
}

// NewRateLimit constructs a rate limiter backed by counter.
func NewRateLimit(counter WindowCounter, threshold int64, windowSeconds int) *RateLimit {
	return &RateLimit{counter: counter, threshold: threshold, windowSeconds: windowSeconds}
}

// Allow increments key's counter for the current window and reports whether
// the event is within the threshold. Once a key is over threshold it stays
// rejected until the window expires in the backing store.
func (r *RateLimit) Allow(ctx context.Context, key string) (bool, error) {
	count, err := r.counter.IncrementWindow(ctx, key, r.windowSeconds)
	if err != nil {
		return false, fmt.Errorf("incrementing rate limit window for %q: %w", key, err)
	}
	return count <= r.threshold, nil
}
