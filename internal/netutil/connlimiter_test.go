package netutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnLimiterRejectsBeyondTotal(t *testing.T) {
	l := NewConnLimiter(2, 0)
	require.NoError(t, l.Acquire("10.0.0.1"))
	require.NoError(t, l.Acquire("10.0.0.2"))
	require.Error(t, l.Acquire("10.0.0.3"))
	require.EqualValues(t, 2, l.Total())
}

func TestConnLimiterRejectsBeyondPerAddress(t *testing.T) {
	l := NewConnLimiter(0, 2)
	require.NoError(t, l.Acquire("10.0.0.1"))
	require.NoError(t, l.Acquire("10.0.0.1"))
	require.Error(t, l.Acquire("10.0.0.1"))
	require.EqualValues(t, 2, l.PerAddress("10.0.0.1"))
}

func TestConnLimiterReleaseFreesSlot(t *testing.T) {
	l := NewConnLimiter(1, 1)
	require.NoError(t, l.Acquire("10.0.0.1"))
	require.Error(t, l.Acquire("10.0.0.1"))

	l.Release("10.0.0.1")
	require.NoError(t, l.Acquire("10.0.0.1"))
}

func TestConnLimiterUnlimitedWhenZero(t *testing.T) {
	l := NewConnLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Acquire("10.0.0.1"))
	}
}
