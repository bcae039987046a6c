package worldserver

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/udisondev/la2go/internal/model"
)

func newTestMonster(id uint32, spawn model.Location) *model.MonsterEntity {
	m := model.NewMonsterEntity(id, 1, "Goblin", spawn, 30, 10, 0, 15)
	m.ConfigureAI(2, 1000, 3.0, 50, 30000)
	return m
}

func newTestPlayer(id uint32, loc model.Location) *model.PlayerEntity {
	rec := model.CharacterRecord{CharacterID: int64(id), MaxHP: 100, CurrentHP: 100, Attack: 41, Defense: 0, X: loc.X, Y: loc.Y, Z: loc.Z}
	return model.NewPlayerEntity(id, rec, "sess", 1, 0)
}

func TestStepMonsterAIIdleToAggro(t *testing.T) {
	ch := NewZoneChannel(1, 0, 1000)
	m := newTestMonster(100, model.NewLocation(100, 0, 100, 0))
	ch.AddMonster(m)
	p := newTestPlayer(1, model.NewLocation(102, 0, 100, 0))
	require.NoError(t, ch.AddPlayer(p))

	StepMonsterAI(ch, m, 0, 0.05, NewTickEvents())
	require.Equal(t, model.AIStateAggro, m.State())
	require.EqualValues(t, 1, m.Target())
}

func TestStepMonsterAIAggroToAttackWhenInRange(t *testing.T) {
	ch := NewZoneChannel(1, 0, 1000)
	m := newTestMonster(100, model.NewLocation(100, 0, 100, 0))
	m.SetTarget(1)
	m.SetState(model.AIStateAggro)
	ch.AddMonster(m)
	p := newTestPlayer(1, model.NewLocation(101, 0, 100, 0))
	require.NoError(t, ch.AddPlayer(p))

	StepMonsterAI(ch, m, 0, 0.05, NewTickEvents())
	require.Equal(t, model.AIStateAttack, m.State())
}

func TestStepMonsterAIAttackDealsDamageOnCooldown(t *testing.T) {
	ch := NewZoneChannel(1, 0, 1000)
	m := newTestMonster(100, model.NewLocation(100, 0, 100, 0))
	m.SetTarget(1)
	m.SetState(model.AIStateAttack)
	ch.AddMonster(m)
	p := newTestPlayer(1, model.NewLocation(101, 0, 100, 0))
	require.NoError(t, ch.AddPlayer(p))

	events := NewTickEvents()
	StepMonsterAI(ch, m, 2000, 0.05, events)
	require.Len(t, events.Damages, 1)
	require.Less(t, p.CurrentHP(), int32(100))

	// Immediately stepping again within attackSpeedMs must not re-attack.
	events2 := NewTickEvents()
	StepMonsterAI(ch, m, 2010, 0.05, events2)
	require.Empty(t, events2.Damages)
}

func TestStepMonsterAIReturnsWhenTargetGone(t *testing.T) {
	ch := NewZoneChannel(1, 0, 1000)
	m := newTestMonster(100, model.NewLocation(100, 0, 100, 0))
	m.SetTarget(999) // nonexistent
	m.SetState(model.AIStateAggro)
	ch.AddMonster(m)

	StepMonsterAI(ch, m, 0, 0.05, NewTickEvents())
	require.Equal(t, model.AIStateReturn, m.State())
}

func TestStepMonsterAIRespawnAfterDelay(t *testing.T) {
	ch := NewZoneChannel(1, 0, 1000)
	spawn := model.NewLocation(100, 0, 100, 0)
	m := newTestMonster(100, spawn)
	m.ApplyDamage(1000)
	m.SetDeathAtMs(0)
	ch.AddMonster(m)
	require.Equal(t, model.AIStateDead, m.State())

	events := NewTickEvents()
	StepMonsterAI(ch, m, 30000, 0.05, events)
	require.Equal(t, model.AIStateIdle, m.State())
	require.Len(t, events.Respawns, 1)
	require.EqualValues(t, 30, m.CurrentHP())
}
