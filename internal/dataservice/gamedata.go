package dataservice

import (
	"context"
	"fmt"
)

// ItemTemplate is a static item definition shared by every character.
type ItemTemplate struct {
	TemplateID int32
	Name       string
	ItemType   string
	Stackable  bool
}

// MonsterTemplate is a static monster definition WorldService spawns
// instances from.
type MonsterTemplate struct {
	TemplateID      int32
	Name            string
	Level           int32
	MaxHP           int32
	Attack          int32
	Defense         int32
	AggroRange      int32
	AttackRange     int32
	AttackSpeedMs   int64
	MoveSpeedUnitsS float64
	LeashDistance   float64
	ExpReward       int64
	GoldReward      int64
}

// SpawnPoint is a fixed (zone, location, template) triple WorldService
// seeds each ZoneChannel's monster population from.
type SpawnPoint struct {
	SpawnID    int64
	TemplateID int32
	ZoneID     int
	X, Y, Z    int32
	RespawnMs  int64
}

// SkillTemplate is a static skill definition; its BaseDamage/DamagePerLevel
// pair feeds the skill-attack-power formula.
type SkillTemplate struct {
	SkillID        int32
	Name           string
	BaseDamage     int32
	DamagePerLevel int32
}

// LootEntry is one (monster template -> item template) drop chance row.
type LootEntry struct {
	TemplateID int32
	ItemID     int32
	Chance     float64
	MinCount   int32
	MaxCount   int32
}

// GameData is DataService's entry point into the read-mostly static-data
// tables, backing the GameData RPC surface's GetAll{Items,Monsters,Spawns,
// Skills,LootTables} calls.
type GameData struct {
	db *DB
}

// NewGameData constructs a GameData repository.
func NewGameData(db *DB) *GameData {
	return &GameData{db: db}
}

// GetAllItems returns every item template.
func (g *GameData) GetAllItems(ctx context.Context) ([]ItemTemplate, error) {
	rows, err := g.db.pool.Query(ctx, `SELECT template_id, name, item_type, stackable FROM item_templates ORDER BY template_id`)
	if err != nil {
		return nil, fmt.Errorf("querying item templates: %w", err)
	}
	defer rows.Close()

	out := make([]ItemTemplate, 0, 64)
	for rows.Next() {
		var t ItemTemplate
		if err := rows.Scan(&t.TemplateID, &t.Name, &t.ItemType, &t.Stackable); err != nil {
			return nil, fmt.Errorf("scanning item template row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetAllMonsters returns every monster template.
func (g *GameData) GetAllMonsters(ctx context.Context) ([]MonsterTemplate, error) {
	rows, err := g.db.pool.Query(ctx,
		`SELECT template_id, name, level, max_hp, attack, defense, aggro_range, attack_range,
		        attack_speed_ms, move_speed_units_s, leash_distance, exp_reward, gold_reward
		 FROM monster_templates ORDER BY template_id`)
	if err != nil {
		return nil, fmt.Errorf("querying monster templates: %w", err)
	}
	defer rows.Close()

	out := make([]MonsterTemplate, 0, 64)
	for rows.Next() {
		var t MonsterTemplate
		if err := rows.Scan(
			&t.TemplateID, &t.Name, &t.Level, &t.MaxHP, &t.Attack, &t.Defense, &t.AggroRange, &t.AttackRange,
			&t.AttackSpeedMs, &t.MoveSpeedUnitsS, &t.LeashDistance, &t.ExpReward, &t.GoldReward,
		); err != nil {
			return nil, fmt.Errorf("scanning monster template row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetAllSpawns returns every configured spawn point, which WorldService
// uses to seed each ZoneChannel's monster population on first use.
func (g *GameData) GetAllSpawns(ctx context.Context) ([]SpawnPoint, error) {
	rows, err := g.db.pool.Query(ctx, `SELECT spawn_id, template_id, zone_id, x, y, z, respawn_ms FROM spawns ORDER BY spawn_id`)
	if err != nil {
		return nil, fmt.Errorf("querying spawns: %w", err)
	}
	defer rows.Close()

	out := make([]SpawnPoint, 0, 64)
	for rows.Next() {
		var s SpawnPoint
		if err := rows.Scan(&s.SpawnID, &s.TemplateID, &s.ZoneID, &s.X, &s.Y, &s.Z, &s.RespawnMs); err != nil {
			return nil, fmt.Errorf("scanning spawn row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetAllSkills returns every skill template.
func (g *GameData) GetAllSkills(ctx context.Context) ([]SkillTemplate, error) {
	rows, err := g.db.pool.Query(ctx, `SELECT skill_id, name, base_damage, damage_per_level FROM skill_templates ORDER BY skill_id`)
	if err != nil {
		return nil, fmt.Errorf("querying skill templates: %w", err)
	}
	defer rows.Close()

	out := make([]SkillTemplate, 0, 32)
	for rows.Next() {
		var s SkillTemplate
		if err := rows.Scan(&s.SkillID, &s.Name, &s.BaseDamage, &s.DamagePerLevel); err != nil {
			return nil, fmt.Errorf("scanning skill template row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetAllLootTables returns every monster-template -> item-template drop
// chance row.
func (g *GameData) GetAllLootTables(ctx context.Context) ([]LootEntry, error) {
	rows, err := g.db.pool.Query(ctx, `SELECT template_id, item_id, chance, min_count, max_count FROM loot_tables ORDER BY template_id, item_id`)
	if err != nil {
		return nil, fmt.Errorf("querying loot tables: %w", err)
	}
	defer rows.Close()

	out := make([]LootEntry, 0, 64)
	for rows.Next() {
		var e LootEntry
		if err := rows.Scan(&e.TemplateID, &e.ItemID, &e.Chance, &e.MinCount, &e.MaxCount); err != nil {
			return nil, fmt.Errorf("scanning loot table row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
