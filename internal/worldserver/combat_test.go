package worldserver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fixedRNG returns deterministic values for ComputeDamage tests.
type fixedRNG struct {
	intn  int
	float float64
}

func (f fixedRNG) Intn(int) int      { return f.intn }
func (f fixedRNG) Float64() float64 { return f.float }

func TestComputeDamageBaseline(t *testing.T) {
	// intn(5)=2 -> variance 0, no crit.
	dmg, crit := ComputeDamage(20, 5, fixedRNG{intn: 2, float: 0.5})
	require.False(t, crit)
	require.EqualValues(t, 15, dmg)
}

func TestComputeDamageIsNeverBelowOne(t *testing.T) {
	dmg, _ := ComputeDamage(1, 100, fixedRNG{intn: 0, float: 0.99})
	require.EqualValues(t, 1, dmg)
}

func TestComputeDamageCriticalMultiplies(t *testing.T) {
	dmg, crit := ComputeDamage(20, 5, fixedRNG{intn: 2, float: 0.01})
	require.True(t, crit)
	require.EqualValues(t, 22, dmg) // floor(15 * 1.5) = 22
}

func TestComputeDamageVarianceRange(t *testing.T) {
	dmgLow, _ := ComputeDamage(20, 5, fixedRNG{intn: 0, float: 0.99})
	dmgHigh, _ := ComputeDamage(20, 5, fixedRNG{intn: 4, float: 0.99})
	require.EqualValues(t, 13, dmgLow)
	require.EqualValues(t, 17, dmgHigh)
}

func TestSkillAttackPower(t *testing.T) {
	require.EqualValues(t, 41+10+3*2, SkillAttackPower(41, 10, 3, 2))
}
