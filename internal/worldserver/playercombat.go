package worldserver

import (
	"math"

	"github.com/udisondev/la2go/internal/wire"
)

// stepPlayerAttacks resolves one tick of auto-attack damage from every
// connected, auto-attacking player in ch against its current target,
// mirroring stepAttack's monster-side rhythm gate and range check.
func stepPlayerAttacks(ch *ZoneChannel, nowMs int64, catalog *SkillCatalog, spawns *SpawnManager, events *TickEvents) {
	for _, p := range ch.Players() {
		if !p.AutoAttacking() || p.IsDead() || !p.Connected() {
			continue
		}
		target := p.Target()
		if target == 0 {
			continue
		}
		m, ok := ch.Monster(target)
		if !ok || m.IsDead() {
			continue
		}

		dist := math.Sqrt(float64(p.Location().DistanceSquared(m.Location())))
		if dist > float64(playerAttackRange) {
			continue
		}
		if nowMs-p.LastAttackAtMs() < playerAttackSpeedMs {
			continue
		}
		p.SetLastAttackAtMs(nowMs)

		attackPower := p.Attack()
		skillID := p.PendingSkillID()
		if skillID != 0 {
			if tmpl, ok := catalog.Lookup(skillID); ok {
				attackPower = SkillAttackPower(p.Attack(), tmpl.BaseDamage, p.Level(), tmpl.DamagePerLevel)
			}
			p.ClearPendingSkillID()
		}

		dmg, crit := ComputeDamage(attackPower, m.Defense(), nil)
		died := m.ApplyDamage(dmg)
		events.AddDamage(wire.DamageResult{
			AttackerEntityID: p.ObjectID(),
			TargetEntityID:   m.ObjectID(),
			Damage:           dmg,
			Critical:         crit,
			TargetDied:       died,
			TargetCurrentHP:  m.CurrentHP(),
		})

		if died {
			m.SetDeathAtMs(nowMs)
			if tmpl, ok := spawns.Template(m.TemplateID()); ok {
				grantKillReward(p, tmpl)
				p.MarkDirty()
			}
		}
	}
}
