package netutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUDPFloodGuardAllowsWithinBurst(t *testing.T) {
	g := NewUDPFloodGuard(5, time.Minute)
	for i := 0; i < 5; i++ {
		require.True(t, g.Allow("1.2.3.4:9000"))
	}
}

func TestUDPFloodGuardDropsBeyondBurst(t *testing.T) {
	g := NewUDPFloodGuard(1, time.Minute)
	require.True(t, g.Allow("1.2.3.4:9000"))
	require.False(t, g.Allow("1.2.3.4:9000"))
}

func TestUDPFloodGuardAddressesAreIndependent(t *testing.T) {
	g := NewUDPFloodGuard(1, time.Minute)
	require.True(t, g.Allow("1.2.3.4:9000"))
	require.True(t, g.Allow("5.6.7.8:9000"))
}

func TestUDPFloodGuardReapRemovesIdleEntries(t *testing.T) {
	g := NewUDPFloodGuard(5, 10*time.Millisecond)
	g.Allow("1.2.3.4:9000")
	require.Equal(t, 1, g.Tracked())

	time.Sleep(25 * time.Millisecond)
	removed := g.Reap()
	require.Equal(t, 1, removed)
	require.Equal(t, 0, g.Tracked())
}
