package model

import (
	"sync/atomic"
)

// AIState is a monster's position in the IDLE/AGGRO/ATTACK/RETURN/DEAD state machine.
type AIState int32

const (
	AIStateIdle AIState = iota
	AIStateAggro
	AIStateAttack
	AIStateReturn
	AIStateDead
)

func (s AIState) String() string {
	switch s {
	case AIStateIdle:
		return "IDLE"
	case AIStateAggro:
		return "AGGRO"
	case AIStateAttack:
		return "ATTACK"
	case AIStateReturn:
		return "RETURN"
	case AIStateDead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}

// MonsterEntity is a live in-world monster. Object ids for monsters start
// at 1,000,000 to keep them disjoint from player object ids.
type MonsterEntity struct {
	*WorldObject

	templateID int32
	spawnPoint Location
	aggroRange int32

	state     atomic.Int32 // AIState
	currentHP atomic.Int32
	maxHP     atomic.Int32
	attack    atomic.Int32
	defense   atomic.Int32

	targetObjectID atomic.Uint32 // 0 = no target

	// AI tuning, set via ConfigureAI; zero values are valid defaults for
	// monsters that never engage in combat (e.g. test fixtures).
	attackRange     int32
	attackSpeedMs   int64
	moveSpeedUnitsS float64
	leashDistance   float64
	respawnMs       int64

	// Tick-thread-owned: mutated exclusively by the AI step.
	lastAttackAtMs int64
	deathAtMs      int64
}

// ConfigureAI sets the combat/movement tuning pulled from a monster's
// template. Must be called before the entity is handed to the tick loop.
func (m *MonsterEntity) ConfigureAI(attackRange int32, attackSpeedMs int64, moveSpeedUnitsS, leashDistance float64, respawnMs int64) {
	m.attackRange = attackRange
	m.attackSpeedMs = attackSpeedMs
	m.moveSpeedUnitsS = moveSpeedUnitsS
	m.leashDistance = leashDistance
	m.respawnMs = respawnMs
}

// AttackRange returns the distance within which ATTACK step applies damage.
func (m *MonsterEntity) AttackRange() int32 { return m.attackRange }

// AttackSpeedMs returns the minimum interval between attacks.
func (m *MonsterEntity) AttackSpeedMs() int64 { return m.attackSpeedMs }

// MoveSpeedUnitsS returns the AGGRO-state pursuit speed.
func (m *MonsterEntity) MoveSpeedUnitsS() float64 { return m.moveSpeedUnitsS }

// LeashDistance returns the max distance from spawn before forced RETURN.
func (m *MonsterEntity) LeashDistance() float64 { return m.leashDistance }

// RespawnMs returns the DEAD→IDLE delay.
func (m *MonsterEntity) RespawnMs() int64 { return m.respawnMs }

// LastAttackAtMs returns the wall-clock millisecond timestamp of the last
// attack, or 0 if none yet this engagement.
func (m *MonsterEntity) LastAttackAtMs() int64 { return m.lastAttackAtMs }

// SetLastAttackAtMs records the timestamp of an attack.
func (m *MonsterEntity) SetLastAttackAtMs(ms int64) { m.lastAttackAtMs = ms }

// DeathAtMs returns the wall-clock millisecond timestamp this monster died,
// or 0 if alive.
func (m *MonsterEntity) DeathAtMs() int64 { return m.deathAtMs }

// SetDeathAtMs records the death timestamp.
func (m *MonsterEntity) SetDeathAtMs(ms int64) { m.deathAtMs = ms }

// MonsterObjectIDBase is the first object id assigned to monster entities.
const MonsterObjectIDBase = 1_000_000

// NewMonsterEntity constructs a monster at its spawn point, in IDLE state
// with full HP.
func NewMonsterEntity(objectID uint32, templateID int32, name string, spawn Location, maxHP, attack, defense, aggroRange int32) *MonsterEntity {
	m := &MonsterEntity{
		WorldObject: NewWorldObject(objectID, name, spawn),
		templateID:  templateID,
		spawnPoint:  spawn,
		aggroRange:  aggroRange,
	}
	m.state.Store(int32(AIStateIdle))
	m.maxHP.Store(maxHP)
	m.currentHP.Store(maxHP)
	m.attack.Store(attack)
	m.defense.Store(defense)
	return m
}

// TemplateID returns the monster template this entity was spawned from.
func (m *MonsterEntity) TemplateID() int32 { return m.templateID }

// SpawnPoint returns the location this monster returns to.
func (m *MonsterEntity) SpawnPoint() Location { return m.spawnPoint }

// AggroRange returns the radius within which a nearby player triggers AGGRO.
func (m *MonsterEntity) AggroRange() int32 { return m.aggroRange }

// State returns the current AI state.
func (m *MonsterEntity) State() AIState { return AIState(m.state.Load()) }

// SetState transitions the AI state. Callers are expected to only call this
// from the tick thread, so no CAS is needed for correctness; atomic storage
// is used purely so concurrent readers (metrics, tests) see a consistent
// value without locking.
func (m *MonsterEntity) SetState(s AIState) { m.state.Store(int32(s)) }

// CurrentHP returns current hit points.
func (m *MonsterEntity) CurrentHP() int32 { return m.currentHP.Load() }

// MaxHP returns maximum hit points.
func (m *MonsterEntity) MaxHP() int32 { return m.maxHP.Load() }

// Attack returns the attack stat used by the damage formula.
func (m *MonsterEntity) Attack() int32 { return m.attack.Load() }

// Defense returns the defense stat used by the damage formula.
func (m *MonsterEntity) Defense() int32 { return m.defense.Load() }

// ApplyDamage reduces current HP by amount, floored at zero, and reports
// whether the monster died from this hit. Transitions state to DEAD on
// death.
func (m *MonsterEntity) ApplyDamage(amount int32) (died bool) {
	if amount < 0 {
		amount = 0
	}
	for {
		old := m.currentHP.Load()
		next := old - amount
		if next < 0 {
			next = 0
		}
		if m.currentHP.CompareAndSwap(old, next) {
			died = next == 0
			break
		}
	}
	if died {
		m.SetState(AIStateDead)
	}
	return died
}

// IsDead reports whether current HP has reached zero.
func (m *MonsterEntity) IsDead() bool {
	return m.currentHP.Load() <= 0
}

// Heal restores current HP to full, used by the RETURN state's arrival
// step.
func (m *MonsterEntity) Heal() {
	m.currentHP.Store(m.maxHP.Load())
}

// Target returns the object id of the monster's current target, or 0 if
// none.
func (m *MonsterEntity) Target() uint32 { return m.targetObjectID.Load() }

// SetTarget sets or clears (0) the current target object id.
func (m *MonsterEntity) SetTarget(objectID uint32) { m.targetObjectID.Store(objectID) }

// Respawn restores HP to full, clears target, returns to spawn point, and
// resets state to IDLE.
func (m *MonsterEntity) Respawn() {
	m.currentHP.Store(m.maxHP.Load())
	m.targetObjectID.Store(0)
	m.lastAttackAtMs = 0
	m.deathAtMs = 0
	m.SetLocation(m.spawnPoint)
	m.SetState(AIStateIdle)
}
