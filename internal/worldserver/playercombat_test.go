package worldserver

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/udisondev/la2go/internal/dataservice"
	"github.com/udisondev/la2go/internal/model"
)

func TestStepPlayerAttacksDealsDamageInRange(t *testing.T) {
	ch := NewZoneChannel(1, 0, 1000)
	p := newTestPlayer(1, model.NewLocation(100, 0, 100, 0))
	p.SetAutoAttacking(true)
	require.NoError(t, ch.AddPlayer(p))

	m := newTestMonster(100, model.NewLocation(101, 0, 100, 0))
	ch.AddMonster(m)
	p.SetTarget(m.ObjectID())

	events := NewTickEvents()
	stepPlayerAttacks(ch, 2000, nil, nil, events)

	require.Len(t, events.Damages, 1)
	require.Less(t, m.CurrentHP(), m.MaxHP())
	require.Equal(t, p.ObjectID(), events.Damages[0].AttackerEntityID)
	require.Equal(t, m.ObjectID(), events.Damages[0].TargetEntityID)
}

func TestStepPlayerAttacksRespectsCooldown(t *testing.T) {
	ch := NewZoneChannel(1, 0, 1000)
	p := newTestPlayer(1, model.NewLocation(100, 0, 100, 0))
	p.SetAutoAttacking(true)
	require.NoError(t, ch.AddPlayer(p))

	m := newTestMonster(100, model.NewLocation(101, 0, 100, 0))
	ch.AddMonster(m)
	p.SetTarget(m.ObjectID())

	events := NewTickEvents()
	stepPlayerAttacks(ch, 1000, nil, nil, events)
	require.Len(t, events.Damages, 1)

	events2 := NewTickEvents()
	stepPlayerAttacks(ch, 1100, nil, nil, events2)
	require.Empty(t, events2.Damages)
}

func TestStepPlayerAttacksSkipsOutOfRange(t *testing.T) {
	ch := NewZoneChannel(1, 0, 1000)
	p := newTestPlayer(1, model.NewLocation(100, 0, 100, 0))
	p.SetAutoAttacking(true)
	require.NoError(t, ch.AddPlayer(p))

	m := newTestMonster(100, model.NewLocation(1000, 0, 1000, 0))
	ch.AddMonster(m)
	p.SetTarget(m.ObjectID())

	events := NewTickEvents()
	stepPlayerAttacks(ch, 2000, nil, nil, events)
	require.Empty(t, events.Damages)
}

func TestStepPlayerAttacksGrantsKillReward(t *testing.T) {
	ch := NewZoneChannel(1, 0, 1000)
	p := newTestPlayer(1, model.NewLocation(100, 0, 100, 0))
	p.SetAutoAttacking(true)
	require.NoError(t, ch.AddPlayer(p))

	m := model.NewMonsterEntity(100, 7, "Weak Rat", model.NewLocation(101, 0, 100, 0), 1, 99, 0, 15)
	m.ConfigureAI(2, 1000, 3.0, 50, 30000)
	ch.AddMonster(m)
	p.SetTarget(m.ObjectID())

	spawns := NewSpawnManager(
		[]dataservice.MonsterTemplate{{TemplateID: 7, Name: "Weak Rat", MaxHP: 1, ExpReward: 50, GoldReward: 10}},
		nil, nil,
	)

	events := NewTickEvents()
	stepPlayerAttacks(ch, 2000, nil, spawns, events)

	require.True(t, m.IsDead())
	require.Len(t, events.Damages, 1)
	require.True(t, events.Damages[0].TargetDied)
	require.EqualValues(t, 50, p.Experience())
	require.EqualValues(t, 10, p.Gold())
}

func TestStepPlayerAttacksUsesSkillDamageWhenPending(t *testing.T) {
	ch := NewZoneChannel(1, 0, 1000)
	p := newTestPlayer(1, model.NewLocation(100, 0, 100, 0))
	p.SetAutoAttacking(true)
	require.NoError(t, ch.AddPlayer(p))

	m := newTestMonster(100, model.NewLocation(101, 0, 100, 0))
	ch.AddMonster(m)
	p.SetTarget(m.ObjectID())
	p.SetPendingSkillID(9)

	catalog := NewSkillCatalog([]dataservice.SkillTemplate{
		{SkillID: 9, Name: "Power Strike", BaseDamage: 100, DamagePerLevel: 5},
	})

	events := NewTickEvents()
	stepPlayerAttacks(ch, 2000, catalog, nil, events)

	require.Len(t, events.Damages, 1)
	require.Greater(t, events.Damages[0].Damage, int32(100))
	require.EqualValues(t, 0, p.PendingSkillID())
}
