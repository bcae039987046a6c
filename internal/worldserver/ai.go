package worldserver

import (
	"math"

	"github.com/udisondev/la2go/internal/model"
	"github.com/udisondev/la2go/internal/wire"
)

// StepMonsterAI advances one monster through a single AI transition for
// this tick. nowMs is the tick's wall-clock timestamp;
// deltaSeconds is the tick period. Damage and lifecycle events are appended
// to events.
func StepMonsterAI(ch *ZoneChannel, m *model.MonsterEntity, nowMs int64, deltaSeconds float64, events *TickEvents) {
	switch m.State() {
	case model.AIStateIdle:
		stepIdle(ch, m)
	case model.AIStateAggro:
		stepAggro(ch, m, deltaSeconds)
	case model.AIStateAttack:
		stepAttack(ch, m, nowMs, events)
	case model.AIStateReturn:
		stepReturn(ch, m, deltaSeconds, events)
	case model.AIStateDead:
		stepDead(ch, m, nowMs, events)
	}
}

func stepIdle(ch *ZoneChannel, m *model.MonsterEntity) {
	loc := m.Location()
	for _, id := range ch.Grid().Nearby(loc.X, loc.Z) {
		p, ok := ch.Player(id)
		if !ok || p.IsDead() || !p.Connected() {
			continue
		}
		dist := math.Sqrt(float64(loc.DistanceSquared(p.Location())))
		if dist <= float64(m.AggroRange()) {
			m.SetTarget(p.ObjectID())
			m.SetState(model.AIStateAggro)
			return
		}
	}
}

func resolveTarget(ch *ZoneChannel, m *model.MonsterEntity) (*model.PlayerEntity, bool) {
	target := m.Target()
	if target == 0 {
		return nil, false
	}
	p, ok := ch.Player(target)
	if !ok || p.IsDead() || !p.Connected() {
		return nil, false
	}
	return p, true
}

func beyondLeash(m *model.MonsterEntity) bool {
	if m.LeashDistance() <= 0 {
		return false
	}
	dist := math.Sqrt(float64(m.Location().DistanceSquared(m.SpawnPoint())))
	return dist > m.LeashDistance()
}

func stepAggro(ch *ZoneChannel, m *model.MonsterEntity, deltaSeconds float64) {
	target, ok := resolveTarget(ch, m)
	if !ok || beyondLeash(m) {
		m.SetTarget(0)
		m.SetState(model.AIStateReturn)
		return
	}

	loc := m.Location()
	tLoc := target.Location()
	dist := math.Sqrt(float64(loc.DistanceSquared(tLoc)))

	if dist <= float64(m.AttackRange()) {
		m.SetState(model.AIStateAttack)
		return
	}

	moveMonsterToward(ch, m, tLoc, m.MoveSpeedUnitsS(), deltaSeconds)
}

func stepAttack(ch *ZoneChannel, m *model.MonsterEntity, nowMs int64, events *TickEvents) {
	target, ok := resolveTarget(ch, m)
	if !ok || beyondLeash(m) {
		m.SetTarget(0)
		m.SetState(model.AIStateReturn)
		return
	}

	loc := m.Location()
	tLoc := target.Location()
	dist := math.Sqrt(float64(loc.DistanceSquared(tLoc)))

	if dist > float64(m.AttackRange())*1.2 {
		m.SetState(model.AIStateAggro)
		return
	}

	if m.AttackSpeedMs() <= 0 || nowMs-m.LastAttackAtMs() < m.AttackSpeedMs() {
		return
	}
	m.SetLastAttackAtMs(nowMs)

	dmg, crit := ComputeDamage(m.Attack(), target.Defense(), nil)
	died := target.ApplyDamage(dmg)
	events.AddDamage(wire.DamageResult{
		AttackerEntityID: m.ObjectID(),
		TargetEntityID:   target.ObjectID(),
		Damage:           dmg,
		Critical:         crit,
		TargetDied:       died,
		TargetCurrentHP:  target.CurrentHP(),
	})
}

func stepReturn(ch *ZoneChannel, m *model.MonsterEntity, deltaSeconds float64, events *TickEvents) {
	spawn := m.SpawnPoint()
	loc := m.Location()
	dist := math.Sqrt(float64(loc.DistanceSquared(spawn)))

	if dist <= 2.0 {
		m.SetLocation(spawn)
		ch.Grid().Update(m.ObjectID(), loc.X, loc.Z, spawn.X, spawn.Z)
		m.Heal()
		m.SetState(model.AIStateIdle)
		m.SetTarget(0)
		return
	}

	moveMonsterToward(ch, m, spawn, m.MoveSpeedUnitsS()*2, deltaSeconds)
}

func stepDead(ch *ZoneChannel, m *model.MonsterEntity, nowMs int64, events *TickEvents) {
	if m.RespawnMs() <= 0 || nowMs-m.DeathAtMs() < m.RespawnMs() {
		return
	}
	oldLoc := m.Location()
	m.Respawn()
	newLoc := m.Location()
	ch.Grid().Update(m.ObjectID(), oldLoc.X, oldLoc.Z, newLoc.X, newLoc.Z)
	events.AddRespawn(wire.RespawnEvent{
		EntityID:  m.ObjectID(),
		X:         newLoc.X,
		Y:         newLoc.Y,
		Z:         newLoc.Z,
		CurrentHP: m.CurrentHP(),
	})
}

func moveMonsterToward(ch *ZoneChannel, m *model.MonsterEntity, dest model.Location, speed, deltaSeconds float64) {
	loc := m.Location()
	dx := float64(dest.X - loc.X)
	dz := float64(dest.Z - loc.Z)
	dist := math.Sqrt(dx*dx + dz*dz)
	if dist == 0 {
		return
	}

	travel := speed * deltaSeconds
	if travel > dist {
		travel = dist
	}

	newLoc := model.NewLocation(
		loc.X+int32(dx/dist*travel),
		loc.Y,
		loc.Z+int32(dz/dist*travel),
		loc.Heading,
	)
	m.SetLocation(newLoc)
	ch.Grid().Update(m.ObjectID(), loc.X, loc.Z, newLoc.X, newLoc.Z)
}
