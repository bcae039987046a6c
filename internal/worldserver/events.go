package worldserver

import "github.com/udisondev/la2go/internal/wire"

// TickEvents accumulates everything a single tick produced that needs to go
// out over the network, so broadcast can batch and coalesce writes per
// connection.
type TickEvents struct {
	Spawns      []wire.EntitySpawn
	Despawns    []wire.EntityDespawn
	Damages     []wire.DamageResult
	Respawns    []wire.RespawnEvent
	Corrections map[uint32]wire.PositionCorrection
}

// NewTickEvents returns an empty accumulator ready for one tick's use.
func NewTickEvents() *TickEvents {
	return &TickEvents{Corrections: make(map[uint32]wire.PositionCorrection)}
}

func (e *TickEvents) AddSpawn(s wire.EntitySpawn)       { e.Spawns = append(e.Spawns, s) }
func (e *TickEvents) AddDespawn(d wire.EntityDespawn)   { e.Despawns = append(e.Despawns, d) }
func (e *TickEvents) AddDamage(d wire.DamageResult)     { e.Damages = append(e.Damages, d) }
func (e *TickEvents) AddRespawn(r wire.RespawnEvent)    { e.Respawns = append(e.Respawns, r) }
func (e *TickEvents) AddCorrection(entityID uint32, c wire.PositionCorrection) {
	e.Corrections[entityID] = c
}

// Empty reports whether the tick produced nothing worth broadcasting.
func (e *TickEvents) Empty() bool {
	return len(e.Spawns) == 0 && len(e.Despawns) == 0 && len(e.Damages) == 0 &&
		len(e.Respawns) == 0 && len(e.Corrections) == 0
}
