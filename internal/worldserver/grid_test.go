package worldserver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpatialGridInsertAndNearby(t *testing.T) {
	g := NewSpatialGrid()
	g.Insert(1, 10, 10)
	g.Insert(2, 1000, 1000)

	near := g.Nearby(10, 10)
	require.Contains(t, near, uint32(1))
	require.NotContains(t, near, uint32(2))
}

func TestSpatialGridUpdateIsNoOpWithinSameCell(t *testing.T) {
	g := NewSpatialGrid()
	g.Insert(1, 5, 5)
	g.Update(1, 5, 5, 6, 6) // still cell (0,0)
	require.Contains(t, g.Nearby(5, 5), uint32(1))
}

func TestSpatialGridUpdateMovesBetweenCells(t *testing.T) {
	g := NewSpatialGrid()
	g.Insert(1, 5, 5)
	g.Update(1, 5, 5, 500, 500)

	require.NotContains(t, g.Nearby(5, 5), uint32(1))
	require.Contains(t, g.Nearby(500, 500), uint32(1))
}

func TestSpatialGridBoundaryRoundsTowardHigherCell(t *testing.T) {
	require.Equal(t, cellKey{1, 0}, cellOf(50, 0))
	require.Equal(t, cellKey{0, 0}, cellOf(49, 0))
	require.Equal(t, cellKey{-1, 0}, cellOf(-1, 0))
	require.Equal(t, cellKey{-1, 0}, cellOf(-50, 0))
}

func TestSpatialGridHandlesVeryDistantCoordinatesWithoutOverflow(t *testing.T) {
	g := NewSpatialGrid()
	const far = int32(2_000_000_000)
	g.Insert(7, far, far)
	require.Contains(t, g.Nearby(far, far), uint32(7))
}

func TestSpatialGridRemove(t *testing.T) {
	g := NewSpatialGrid()
	g.Insert(1, 0, 0)
	g.Remove(1, 0, 0)
	require.Empty(t, g.Nearby(0, 0))
}
