package worldserver

import (
	"log/slog"

	"github.com/udisondev/la2go/internal/model"
	"github.com/udisondev/la2go/internal/wire"
)

// BroadcastService batches outbound frames produced during a tick and
// writes each recipient's coalesced set exactly once per tick. The "network flush" here is simply handing frames to each
// client's async send queue; Client.writePump performs the actual socket
// write off the tick thread.
type BroadcastService struct {
	logger *slog.Logger
}

// NewBroadcastService constructs a broadcaster.
func NewBroadcastService(logger *slog.Logger) *BroadcastService {
	return &BroadcastService{logger: logger}
}

// connLookup resolves a PlayerEntity's live connection; World.connFor
// implements it over World.clientsByPlayer.
type connLookup func(playerObjectID uint32) (TCPResponder, bool)

// Flush delivers one tick's accumulated events to every affected player's
// 3x3 neighborhood.
func (b *BroadcastService) Flush(ch *ZoneChannel, events *TickEvents, lookup connLookup) {
	if events.Empty() {
		return
	}

	for _, p := range ch.Players() {
		conn, ok := lookup(p.ObjectID())
		if !ok {
			continue
		}
		loc := p.Location()
		interest := neighborhoodSet(ch.Grid().Nearby(loc.X, loc.Z))

		for _, s := range events.Spawns {
			if interest[s.EntityID] {
				b.send(conn, wire.OpEntitySpawn, s)
			}
		}
		for _, d := range events.Despawns {
			if interest[d.EntityID] {
				b.send(conn, wire.OpEntityDespawn, d)
			}
		}
		for _, dmg := range events.Damages {
			if interest[dmg.AttackerEntityID] || interest[dmg.TargetEntityID] {
				b.send(conn, wire.OpDamageResult, dmg)
			}
		}
		for _, r := range events.Respawns {
			if interest[r.EntityID] {
				b.send(conn, wire.OpRespawnEvent, r)
			}
		}
		if correction, ok := events.Corrections[p.ObjectID()]; ok {
			b.send(conn, wire.OpPositionCorrection, correction)
		}
	}
}

func (b *BroadcastService) send(conn TCPResponder, opcode wire.Opcode, msg any) {
	if err := conn.SendFrame(opcode, msg); err != nil {
		b.logger.Warn("broadcast send failed", "opcode", opcode.Name(), "error", err)
	}
}

func neighborhoodSet(ids []uint32) map[uint32]bool {
	set := make(map[uint32]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// SpawnFor builds the EntitySpawn record for a player or monster.
func SpawnFor(entity any) wire.EntitySpawn {
	switch e := entity.(type) {
	case *model.PlayerEntity:
		loc := e.Location()
		return wire.EntitySpawn{
			EntityID: e.ObjectID(), IsMonster: false, Name: e.Name(),
			X: loc.X, Y: loc.Y, Z: loc.Z, Heading: loc.Heading,
			Level: e.Level(), CurrentHP: e.CurrentHP(), MaxHP: e.MaxHP(),
		}
	case *model.MonsterEntity:
		loc := e.Location()
		return wire.EntitySpawn{
			EntityID: e.ObjectID(), IsMonster: true, Name: e.Name(),
			X: loc.X, Y: loc.Y, Z: loc.Z, Heading: loc.Heading,
			CurrentHP: e.CurrentHP(), MaxHP: e.MaxHP(),
		}
	default:
		return wire.EntitySpawn{}
	}
}
