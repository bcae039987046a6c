package worldserver

import (
	"errors"
	"math"

	"github.com/udisondev/la2go/internal/model"
)

const (
	walkSpeedUnitsS = 5.0
	flySpeedUnitsS  = 8.0
	dexSpeedBonus   = 0.05

	worldMinXZ = -100.0
	worldMaxXZ = 10100.0
	worldMinY  = -10.0
	worldMaxY  = 500.0
	groundY    = 1.0

	// speedTolerance guards against false-positive rejections from float
	// rounding and network jitter.
	speedTolerance = 1.5
	// flapGuard ignores tiny deltas entirely, per spec ("ignored if
	// distance <= 0.1").
	flapGuard = 0.1
)

// NormalizeInput validates and, if needed, renormalizes a movement input
// vector. Returns an error for non-finite
// components.
func NormalizeInput(dx, dy, dz float64, heading uint16) (ndx, ndy, ndz float64, err error) {
	if !isFinite(dx) || !isFinite(dy) || !isFinite(dz) {
		return 0, 0, 0, errNonFiniteInput
	}

	length := math.Sqrt(dx*dx + dy*dy + dz*dz)
	const tolerance = 1e-6
	if length > 1+tolerance {
		dx, dy, dz = dx/length, dy/length, dz/length
	}
	return dx, dy, dz, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

var errNonFiniteInput = errors.New("movement input contains a non-finite component")

// CandidatePosition computes the position a moving player would occupy
// after deltaMs of travel at its current input vector.
func CandidatePosition(loc model.Location, dx, dy, dz float64, dex int32, flying bool, deltaMs int64) model.Location {
	speed := walkSpeedUnitsS
	if flying {
		speed = flySpeedUnitsS
	}
	speed += float64(dex) * dexSpeedBonus

	deltaSeconds := float64(deltaMs) / 1000.0
	travel := speed * deltaSeconds

	return model.NewLocation(
		loc.X+int32(dx*travel),
		loc.Y+int32(dy*travel),
		loc.Z+int32(dz*travel),
		loc.Heading,
	)
}

// ValidateMovement checks a candidate position against world bounds and a
// speed-based travel-distance ceiling. ok is
// false and reason is populated when the candidate must be rejected.
func ValidateMovement(current, candidate model.Location, dex int32, flying bool, deltaMs int64) (ok bool, reason string) {
	if !isFinite(float64(candidate.X)) || !isFinite(float64(candidate.Y)) || !isFinite(float64(candidate.Z)) {
		return false, "non_finite_position"
	}
	if float64(candidate.X) < worldMinXZ || float64(candidate.X) > worldMaxXZ {
		return false, "out_of_bounds_x"
	}
	if float64(candidate.Z) < worldMinXZ || float64(candidate.Z) > worldMaxXZ {
		return false, "out_of_bounds_z"
	}
	if float64(candidate.Y) < worldMinY || float64(candidate.Y) > worldMaxY {
		return false, "out_of_bounds_y"
	}
	if !flying && float64(candidate.Y) > groundY {
		return false, "airborne_without_flight"
	}

	dist := math.Sqrt(float64(current.DistanceSquared(candidate)))
	if dist <= flapGuard {
		return true, ""
	}

	speed := walkSpeedUnitsS
	if flying {
		speed = flySpeedUnitsS
	}
	speed += float64(dex) * dexSpeedBonus

	deltaSeconds := float64(deltaMs) / 1000.0
	maxDist := speed * deltaSeconds * speedTolerance
	if dist > maxDist {
		return false, "excess_speed"
	}
	return true, ""
}
