package model

import (
	"sync"
	"sync/atomic"
)

// PlayerEntity is the live in-world representation of a connected player,
// owned exclusively by WorldService's tick thread. Object ids for players start at 1.
type PlayerEntity struct {
	*WorldObject

	characterID int64
	accountID   int64
	sessionID   string

	level      atomic.Int32
	experience atomic.Int64
	gold       atomic.Int64

	currentHP atomic.Int32
	maxHP     atomic.Int32
	attack    atomic.Int32
	defense   atomic.Int32

	mu        sync.RWMutex
	class     string
	zoneID    int
	channelID int
	connected bool

	// Tick-thread-owned fields: mutated exclusively by the world
	// tick loop in response to dequeued input packets; network goroutines
	// never write these directly.
	dex            int32
	inputDX        float64
	inputDY        float64
	inputDZ        float64
	moving         bool
	flying         bool
	targetObjectID uint32
	autoAttacking  bool
	lastAttackAtMs int64
	pendingSkillID int32
	dirty          bool
}

// NewPlayerEntity constructs a live player entity from a persisted
// character record.
func NewPlayerEntity(objectID uint32, rec CharacterRecord, sessionID string, zoneID, channelID int) *PlayerEntity {
	loc := NewLocation(rec.X, rec.Y, rec.Z, 0)
	p := &PlayerEntity{
		WorldObject: NewWorldObject(objectID, rec.Name, loc),
		characterID: rec.CharacterID,
		accountID:   rec.AccountID,
		sessionID:   sessionID,
		class:       rec.Class,
		zoneID:      zoneID,
		channelID:   channelID,
		connected:   true,
	}
	p.level.Store(rec.Level)
	p.experience.Store(rec.Experience)
	p.gold.Store(rec.Gold)
	p.currentHP.Store(rec.CurrentHP)
	p.maxHP.Store(rec.MaxHP)
	p.attack.Store(rec.Attack)
	p.defense.Store(rec.Defense)
	p.dex = rec.Dex
	return p
}

// Dex returns the dexterity stat used as a movement-speed bonus.
func (p *PlayerEntity) Dex() int32 { return p.dex }

// InputVector returns the last normalized movement input recorded by the
// tick thread.
func (p *PlayerEntity) InputVector() (dx, dy, dz float64, moving, flying bool) {
	return p.inputDX, p.inputDY, p.inputDZ, p.moving, p.flying
}

// SetInputVector stores a movement input vector, called only from the tick
// thread while draining the input queue.
func (p *PlayerEntity) SetInputVector(dx, dy, dz float64, moving, flying bool) {
	wasFlying := p.flying
	p.inputDX, p.inputDY, p.inputDZ = dx, dy, dz
	p.moving = moving
	p.flying = flying
	if wasFlying != flying {
		p.dirty = true
	}
}

// Target returns the object id of the entity's current combat target, or 0.
func (p *PlayerEntity) Target() uint32 { return p.targetObjectID }

// SetTarget sets or clears (0) the current target object id.
func (p *PlayerEntity) SetTarget(objectID uint32) { p.targetObjectID = objectID }

// AutoAttacking reports whether auto-attack is currently engaged.
func (p *PlayerEntity) AutoAttacking() bool { return p.autoAttacking }

// SetAutoAttacking toggles auto-attack.
func (p *PlayerEntity) SetAutoAttacking(v bool) { p.autoAttacking = v }

// LastAttackAtMs returns the wall-clock millisecond timestamp of the last
// auto-attack, or 0 if none yet.
func (p *PlayerEntity) LastAttackAtMs() int64 { return p.lastAttackAtMs }

// SetLastAttackAtMs records the timestamp of an auto-attack.
func (p *PlayerEntity) SetLastAttackAtMs(ms int64) { p.lastAttackAtMs = ms }

// PendingSkillID returns the skill id queued for the next attack against
// the current target, or 0 for a plain melee hit.
func (p *PlayerEntity) PendingSkillID() int32 { return p.pendingSkillID }

// SetPendingSkillID queues a skill use for the next attack resolution.
func (p *PlayerEntity) SetPendingSkillID(skillID int32) { p.pendingSkillID = skillID }

// ClearPendingSkillID resets to a plain melee attack, called once the
// queued skill has been resolved.
func (p *PlayerEntity) ClearPendingSkillID() { p.pendingSkillID = 0 }

// Dirty reports whether this entity has unsaved changes since the last
// periodic persistence sweep.
func (p *PlayerEntity) Dirty() bool { return p.dirty }

// MarkDirty flags the entity as needing a write-back snapshot.
func (p *PlayerEntity) MarkDirty() { p.dirty = true }

// ClearDirty resets the dirty flag, called immediately before scheduling the
// snapshot write so a concurrent mutation during I/O is not silently lost.
func (p *PlayerEntity) ClearDirty() { p.dirty = false }

// CharacterID returns the durable character id (immutable).
func (p *PlayerEntity) CharacterID() int64 { return p.characterID }

// AccountID returns the owning account id (immutable).
func (p *PlayerEntity) AccountID() int64 { return p.accountID }

// SessionID returns the session token subject this entity is bound to.
func (p *PlayerEntity) SessionID() string { return p.sessionID }

// Level returns the current level.
func (p *PlayerEntity) Level() int32 { return p.level.Load() }

// Experience returns current experience points.
func (p *PlayerEntity) Experience() int64 { return p.experience.Load() }

// AddExperience adds (possibly negative) experience, floored at zero.
func (p *PlayerEntity) AddExperience(delta int64) int64 {
	for {
		old := p.experience.Load()
		next := old + delta
		if next < 0 {
			next = 0
		}
		if p.experience.CompareAndSwap(old, next) {
			return next
		}
	}
}

// Gold returns the current gold balance.
func (p *PlayerEntity) Gold() int64 { return p.gold.Load() }

// AddGold adds (possibly negative) gold, floored at zero.
func (p *PlayerEntity) AddGold(delta int64) int64 {
	for {
		old := p.gold.Load()
		next := old + delta
		if next < 0 {
			next = 0
		}
		if p.gold.CompareAndSwap(old, next) {
			return next
		}
	}
}

// CurrentHP returns current hit points.
func (p *PlayerEntity) CurrentHP() int32 { return p.currentHP.Load() }

// MaxHP returns maximum hit points.
func (p *PlayerEntity) MaxHP() int32 { return p.maxHP.Load() }

// Attack returns the attack stat used by the damage formula.
func (p *PlayerEntity) Attack() int32 { return p.attack.Load() }

// Defense returns the defense stat used by the damage formula.
func (p *PlayerEntity) Defense() int32 { return p.defense.Load() }

// ApplyDamage reduces current HP by amount, floored at zero, and reports
// whether the entity died from this hit.
func (p *PlayerEntity) ApplyDamage(amount int32) (died bool) {
	if amount < 0 {
		amount = 0
	}
	for {
		old := p.currentHP.Load()
		next := old - amount
		if next < 0 {
			next = 0
		}
		if p.currentHP.CompareAndSwap(old, next) {
			return next == 0
		}
	}
}

// IsDead reports whether current HP has reached zero.
func (p *PlayerEntity) IsDead() bool {
	return p.currentHP.Load() <= 0
}

// Respawn restores HP to full.
func (p *PlayerEntity) Respawn(loc Location) {
	p.currentHP.Store(p.maxHP.Load())
	p.SetLocation(loc)
}

// Class returns the character class name.
func (p *PlayerEntity) Class() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.class
}

// Zone returns the current zone and channel ids.
func (p *PlayerEntity) Zone() (zoneID, channelID int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.zoneID, p.channelID
}

// SetZone updates the current zone and channel ids (called on zone
// transfer or channel rebalance).
func (p *PlayerEntity) SetZone(zoneID, channelID int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.zoneID = zoneID
	p.channelID = channelID
}

// Connected reports whether the owning TCP connection is still attached.
func (p *PlayerEntity) Connected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected
}

// SetConnected updates the connection-attached flag.
func (p *PlayerEntity) SetConnected(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = v
}

// ToRecord produces a durable snapshot suitable for write-back to
// DataService or caching in the shared store.
func (p *PlayerEntity) ToRecord() CharacterRecord {
	loc := p.Location()
	zoneID, _ := p.Zone()
	return CharacterRecord{
		CharacterID: p.characterID,
		AccountID:   p.accountID,
		Name:        p.Name(),
		Class:       p.Class(),
		Level:       p.Level(),
		Experience:  p.Experience(),
		MaxHP:       p.MaxHP(),
		CurrentHP:   p.CurrentHP(),
		Attack:      p.Attack(),
		Defense:     p.Defense(),
		Dex:         p.Dex(),
		Gold:        p.Gold(),
		ZoneID:      zoneID,
		X:           loc.X,
		Y:           loc.Y,
		Z:           loc.Z,
	}
}
