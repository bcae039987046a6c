package dataservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/la2go/internal/testutil"
)

func TestGameDataGetAllMonstersReturnsCombatTuning(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO monster_templates
			(template_id, name, level, max_hp, attack, defense, aggro_range, attack_range,
			 attack_speed_ms, move_speed_units_s, leash_distance, exp_reward, gold_reward)
		VALUES (1, 'Goblin', 3, 30, 10, 2, 15, 2, 1100, 3.5, 60, 25, 8)
	`)
	require.NoError(t, err)

	data := NewGameData(&DB{pool: pool})
	monsters, err := data.GetAllMonsters(ctx)
	require.NoError(t, err)
	require.Len(t, monsters, 1)

	m := monsters[0]
	require.Equal(t, "Goblin", m.Name)
	require.EqualValues(t, 1100, m.AttackSpeedMs)
	require.InDelta(t, 3.5, m.MoveSpeedUnitsS, 0.001)
	require.InDelta(t, 60, m.LeashDistance, 0.001)
	require.EqualValues(t, 25, m.ExpReward)
	require.EqualValues(t, 8, m.GoldReward)
}

func TestGameDataGetAllSpawnsReturnsZoneAssignment(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO monster_templates
			(template_id, name, level, max_hp, attack, defense, aggro_range, attack_range)
		VALUES (1, 'Goblin', 3, 30, 10, 2, 15, 2)
	`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `
		INSERT INTO spawns (template_id, zone_id, x, y, z, respawn_ms)
		VALUES (1, 1, 10, 0, 10, 30000)
	`)
	require.NoError(t, err)

	data := NewGameData(&DB{pool: pool})
	spawns, err := data.GetAllSpawns(ctx)
	require.NoError(t, err)
	require.Len(t, spawns, 1)
	require.Equal(t, 1, spawns[0].ZoneID)
	require.EqualValues(t, 1, spawns[0].TemplateID)
}

func TestGameDataGetAllSkillsReturnsDamageFormulaInputs(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO skill_templates (skill_id, name, base_damage, damage_per_level)
		VALUES (9, 'Power Strike', 100, 5)
	`)
	require.NoError(t, err)

	data := NewGameData(&DB{pool: pool})
	skills, err := data.GetAllSkills(ctx)
	require.NoError(t, err)
	require.Len(t, skills, 1)
	require.Equal(t, "Power Strike", skills[0].Name)
	require.EqualValues(t, 5, skills[0].DamagePerLevel)
}
