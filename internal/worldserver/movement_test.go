package worldserver

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/udisondev/la2go/internal/model"
)

func TestNormalizeInputRejectsNonFinite(t *testing.T) {
	_, _, _, err := NormalizeInput(math.NaN(), 0, 0, 0)
	require.Error(t, err)
}

func TestNormalizeInputRenormalizesOverunitLength(t *testing.T) {
	dx, dy, dz, err := NormalizeInput(2, 0, 0, 0)
	require.NoError(t, err)
	require.InDelta(t, 1.0, dx, 1e-9)
	require.InDelta(t, 0.0, dy, 1e-9)
	require.InDelta(t, 0.0, dz, 1e-9)
}

func TestNormalizeInputLeavesUnitVectorUnchanged(t *testing.T) {
	dx, dy, dz, err := NormalizeInput(0.6, 0, 0.8, 0)
	require.NoError(t, err)
	require.InDelta(t, 0.6, dx, 1e-9)
	require.InDelta(t, 0.8, dz, 1e-9)
}

func TestValidateMovementRejectsOutOfBounds(t *testing.T) {
	cur := model.NewLocation(0, 0, 0, 0)
	candidate := model.NewLocation(20000, 0, 0, 0)
	ok, reason := ValidateMovement(cur, candidate, 0, false, 50)
	require.False(t, ok)
	require.Equal(t, "out_of_bounds_x", reason)
}

func TestValidateMovementRejectsAirborneWithoutFlight(t *testing.T) {
	cur := model.NewLocation(0, 0, 0, 0)
	candidate := model.NewLocation(0, 5, 0, 0)
	ok, reason := ValidateMovement(cur, candidate, 0, false, 50)
	require.False(t, ok)
	require.Equal(t, "airborne_without_flight", reason)
}

func TestValidateMovementAllowsWithinSpeedBudget(t *testing.T) {
	cur := model.NewLocation(0, 0, 0, 0)
	// 5 units/s * 1s * 1.5 tolerance = 7.5 units allowed; 5 units is inside it.
	candidate := model.NewLocation(5, 0, 0, 0)
	ok, _ := ValidateMovement(cur, candidate, 0, false, 1000)
	require.True(t, ok)
}

func TestValidateMovementRejectsExcessSpeed(t *testing.T) {
	cur := model.NewLocation(0, 0, 0, 0)
	candidate := model.NewLocation(1000, 0, 0, 0)
	ok, reason := ValidateMovement(cur, candidate, 0, false, 50)
	require.False(t, ok)
	require.Equal(t, "excess_speed", reason)
}

func TestValidateMovementIgnoresTinyFlap(t *testing.T) {
	cur := model.NewLocation(1000, 0, 1000, 0)
	// Integer coordinates cannot express a move of 0.1 units or less, so an
	// unchanged position stands in for the tiny-delta case.
	candidate := model.NewLocation(1000, 0, 1000, 0)
	ok, _ := ValidateMovement(cur, candidate, 0, false, 50)
	require.True(t, ok)
}

func TestCandidatePositionAppliesDexBonus(t *testing.T) {
	loc := model.NewLocation(0, 0, 0, 0)
	withoutDex := CandidatePosition(loc, 1, 0, 0, 0, false, 1000)
	withDex := CandidatePosition(loc, 1, 0, 0, 100, false, 1000)
	require.Greater(t, withDex.X, withoutDex.X)
}
