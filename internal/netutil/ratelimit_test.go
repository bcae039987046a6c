package netutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeWindowCounter struct {
	counts map[string]int64
}

func newFakeWindowCounter() *fakeWindowCounter {
	return &fakeWindowCounter{counts: make(map[string]int64)}
}

func (f *fakeWindowCounter) IncrementWindow(_ context.Context, key string, _ int) (int64, error) {
	f.counts[key]++
	return f.counts[key], nil
}

func TestRateLimitAllowsWithinThreshold(t *testing.T) {
	counter := newFakeWindowCounter()
	limiter := NewRateLimit(counter, 3, 60)

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(context.Background(), "acct:1")
		require.NoError(t, err)
		require.True(t, allowed)
	}
}

func TestRateLimitRejectsBeyondThreshold(t *testing.T) {
	counter := newFakeWindowCounter()
	limiter := NewRateLimit(counter, 2, 60)

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(context.Background(), "acct:1")
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, err := limiter.Allow(context.Background(), "acct:1")
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestRateLimitKeysAreIndependent(t *testing.T) {
	counter := newFakeWindowCounter()
	limiter := NewRateLimit(counter, 1, 60)

	allowedA, err := limiter.Allow(context.Background(), "acct:1")
	require.NoError(t, err)
	require.True(t, allowedA)

	allowedB, err := limiter.Allow(context.Background(), "acct:2")
	require.NoError(t, err)
	require.True(t, allowedB)
}
