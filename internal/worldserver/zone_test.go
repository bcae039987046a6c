package worldserver

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/udisondev/la2go/internal/model"
)

func TestBestChannelCreatesFirstChannelOnFirstUse(t *testing.T) {
	m := NewZoneManager(2)

	ch, created, err := m.BestChannel(1)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, 0, ch.ChannelID)
}

func TestBestChannelReusesChannelWithSpareCapacity(t *testing.T) {
	m := NewZoneManager(2)

	ch1, created1, err := m.BestChannel(1)
	require.NoError(t, err)
	require.True(t, created1)

	ch2, created2, err := m.BestChannel(1)
	require.NoError(t, err)
	require.False(t, created2)
	require.Same(t, ch1, ch2)
}

func TestBestChannelAllocatesNewChannelWhenFull(t *testing.T) {
	m := NewZoneManager(1)

	ch1, _, err := m.BestChannel(1)
	require.NoError(t, err)
	p := newTestPlayer(1, model.NewLocation(0, 0, 0, 0))
	require.NoError(t, ch1.AddPlayer(p))

	ch2, created2, err := m.BestChannel(1)
	require.NoError(t, err)
	require.True(t, created2)
	require.NotSame(t, ch1, ch2)
	require.Equal(t, 1, ch2.ChannelID)
}

func TestBestChannelRejectsUnknownZone(t *testing.T) {
	m := NewZoneManager(2)

	_, _, err := m.BestChannel(999)
	require.ErrorIs(t, err, ErrUnknownZone)
}
