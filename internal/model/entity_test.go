package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlayerEntityDamageAndDeath(t *testing.T) {
	rec := CharacterRecord{
		CharacterID: 1, AccountID: 1, Name: "Gandalf", Class: "Mage",
		Level: 10, MaxHP: 100, CurrentHP: 100, Attack: 20, Defense: 5,
	}
	p := NewPlayerEntity(1, rec, "sess-1", 1, 1)

	require.False(t, p.ApplyDamage(40))
	require.EqualValues(t, 60, p.CurrentHP())

	require.True(t, p.ApplyDamage(1000))
	require.True(t, p.IsDead())
	require.EqualValues(t, 0, p.CurrentHP())
}

func TestPlayerEntityRespawnRestoresHP(t *testing.T) {
	rec := CharacterRecord{MaxHP: 100, CurrentHP: 100}
	p := NewPlayerEntity(1, rec, "sess-1", 1, 1)
	p.ApplyDamage(100)
	require.True(t, p.IsDead())

	p.Respawn(NewLocation(0, 0, 0, 0))
	require.False(t, p.IsDead())
	require.EqualValues(t, 100, p.CurrentHP())
}

func TestPlayerEntityGoldAndExperienceFloorAtZero(t *testing.T) {
	p := NewPlayerEntity(1, CharacterRecord{}, "sess-1", 1, 1)

	require.EqualValues(t, -0, p.AddGold(0))
	require.EqualValues(t, 0, p.AddGold(-50))
	require.EqualValues(t, 100, p.AddGold(100))

	require.EqualValues(t, 0, p.AddExperience(-10))
	require.EqualValues(t, 500, p.AddExperience(500))
}

func TestMonsterEntityObjectIDBaseConvention(t *testing.T) {
	m := NewMonsterEntity(MonsterObjectIDBase, 1, "Goblin", NewLocation(10, 10, 0, 0), 50, 10, 2, 200)
	require.Equal(t, AIStateIdle, m.State())
	require.EqualValues(t, MonsterObjectIDBase, m.ObjectID())
}

func TestMonsterEntityDeathTransitionsState(t *testing.T) {
	m := NewMonsterEntity(MonsterObjectIDBase+1, 1, "Goblin", NewLocation(0, 0, 0, 0), 30, 10, 2, 200)
	m.SetState(AIStateAttack)

	died := m.ApplyDamage(1000)
	require.True(t, died)
	require.Equal(t, AIStateDead, m.State())
}

func TestMonsterEntityRespawnResetsState(t *testing.T) {
	m := NewMonsterEntity(MonsterObjectIDBase+2, 1, "Goblin", NewLocation(5, 5, 0, 0), 30, 10, 2, 200)
	m.SetTarget(42)
	m.ApplyDamage(1000)
	require.Equal(t, AIStateDead, m.State())

	m.Respawn()
	require.Equal(t, AIStateIdle, m.State())
	require.EqualValues(t, 0, m.Target())
	require.EqualValues(t, 30, m.CurrentHP())
	require.Equal(t, m.SpawnPoint(), m.Location())
}
