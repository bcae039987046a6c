package worldserver

import (
	"log/slog"

	"github.com/udisondev/la2go/internal/dataservice"
	"github.com/udisondev/la2go/internal/model"
)

// SpawnManager holds the static monster/spawn-point tables loaded once at
// startup and seeds a freshly created ZoneChannel's monster population the
// first time a player enters it (see ZoneManager.BestChannel's created
// flag).
type SpawnManager struct {
	templates map[int32]dataservice.MonsterTemplate
	byZone    map[int][]dataservice.SpawnPoint
	logger    *slog.Logger
}

// NewSpawnManager indexes templates by id and spawn points by zone.
func NewSpawnManager(templates []dataservice.MonsterTemplate, spawns []dataservice.SpawnPoint, logger *slog.Logger) *SpawnManager {
	sm := &SpawnManager{
		templates: make(map[int32]dataservice.MonsterTemplate, len(templates)),
		byZone:    make(map[int][]dataservice.SpawnPoint),
		logger:    logger,
	}
	for _, t := range templates {
		sm.templates[t.TemplateID] = t
	}
	for _, sp := range spawns {
		sm.byZone[sp.ZoneID] = append(sm.byZone[sp.ZoneID], sp)
	}
	return sm
}

// Seed populates ch with one MonsterEntity per configured spawn point in
// zoneID, assigning entity ids from allocate. Spawn points referencing an
// unknown template are skipped and logged.
func (sm *SpawnManager) Seed(ch *ZoneChannel, zoneID int, allocate func() uint32) {
	for _, sp := range sm.byZone[zoneID] {
		t, ok := sm.templates[sp.TemplateID]
		if !ok {
			sm.logger.Warn("spawn point references unknown monster template", "spawn_id", sp.SpawnID, "template_id", sp.TemplateID)
			continue
		}

		m := model.NewMonsterEntity(
			allocate(), t.TemplateID, t.Name,
			model.NewLocation(sp.X, sp.Y, sp.Z, 0),
			t.MaxHP, t.Attack, t.Defense, t.AggroRange,
		)
		m.ConfigureAI(t.AttackRange, t.AttackSpeedMs, t.MoveSpeedUnitsS, t.LeashDistance, sp.RespawnMs)
		ch.AddMonster(m)
	}
}

// Template looks up a monster template by id, used by stepPlayerAttacks to
// grant the correct XP/gold reward on death (via loot.go's grantKillReward).
func (sm *SpawnManager) Template(templateID int32) (dataservice.MonsterTemplate, bool) {
	if sm == nil {
		return dataservice.MonsterTemplate{}, false
	}
	t, ok := sm.templates[templateID]
	return t, ok
}
