package worldserver

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/udisondev/la2go/internal/dataservice"
)

func TestSpawnManagerSeedsChannelFromZoneSpawnPoints(t *testing.T) {
	templates := []dataservice.MonsterTemplate{
		{TemplateID: 1, Name: "Goblin", MaxHP: 30, Attack: 10, Defense: 2, AggroRange: 15, AttackRange: 2, AttackSpeedMs: 1000, MoveSpeedUnitsS: 3, LeashDistance: 50, ExpReward: 20, GoldReward: 5},
	}
	spawns := []dataservice.SpawnPoint{
		{SpawnID: 1, TemplateID: 1, ZoneID: 1, X: 10, Y: 0, Z: 10, RespawnMs: 30000},
		{SpawnID: 2, TemplateID: 1, ZoneID: 1, X: 20, Y: 0, Z: 20, RespawnMs: 30000},
		{SpawnID: 3, TemplateID: 1, ZoneID: 2, X: 0, Y: 0, Z: 0, RespawnMs: 30000},
	}
	sm := NewSpawnManager(templates, spawns, slog.Default())

	ch := NewZoneChannel(1, 0, 1000)
	var next uint32
	sm.Seed(ch, 1, func() uint32 {
		next++
		return next
	})

	require.Len(t, ch.Monsters(), 2)
	for _, m := range ch.Monsters() {
		require.EqualValues(t, 1, m.TemplateID())
		require.EqualValues(t, 30, m.MaxHP())
		require.EqualValues(t, 2, m.AttackRange())
	}
}

func TestSpawnManagerSkipsUnknownTemplate(t *testing.T) {
	spawns := []dataservice.SpawnPoint{
		{SpawnID: 1, TemplateID: 99, ZoneID: 1, X: 0, Y: 0, Z: 0, RespawnMs: 30000},
	}
	sm := NewSpawnManager(nil, spawns, slog.Default())

	ch := NewZoneChannel(1, 0, 1000)
	sm.Seed(ch, 1, func() uint32 { return 1 })

	require.Empty(t, ch.Monsters())
}

func TestSpawnManagerTemplateLookup(t *testing.T) {
	templates := []dataservice.MonsterTemplate{{TemplateID: 5, Name: "Orc", ExpReward: 100}}
	sm := NewSpawnManager(templates, nil, slog.Default())

	tmpl, ok := sm.Template(5)
	require.True(t, ok)
	require.EqualValues(t, 100, tmpl.ExpReward)

	_, ok = sm.Template(99)
	require.False(t, ok)
}

func TestSkillCatalogLookup(t *testing.T) {
	catalog := NewSkillCatalog([]dataservice.SkillTemplate{
		{SkillID: 3, Name: "Fireball", BaseDamage: 50, DamagePerLevel: 4},
	})

	tmpl, ok := catalog.Lookup(3)
	require.True(t, ok)
	require.Equal(t, "Fireball", tmpl.Name)

	_, ok = catalog.Lookup(404)
	require.False(t, ok)
}
