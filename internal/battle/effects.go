package battle

import (
	"math"

	"creature-arena/internal/constants"
	"creature-arena/internal/domain"
	"creature-arena/internal/rng"
)

const hitChance = 0.95

// applyEffect resolves one ability effect against its implicit target:
// damage, debuffs and harmful statuses land on the chosen enemy, heals,
// buffs and regen land on the actor. Effects apply in the order declared
// on the ability.
func (e *Engine) applyEffect(b *domain.Battle, actorIdx, targetIdx int, ability domain.Ability, eff domain.Effect, source rng.Source, entry *domain.BattleLogEntry) {
	actor := &b.Combatants[actorIdx]

	switch eff.Kind {
	case domain.EffectDamage:
		target := &b.Combatants[targetIdx]
		if !target.Alive() {
			return
		}
		dmg, crit := e.rollDamage(b, actor, target, ability, eff, source)
		target.HP -= dmg
		defeated := false
		if target.HP <= 0 {
			target.HP = 0
			defeated = true
		}
		res := findTarget(entry, target.CreatureID)
		res.Damage += dmg
		res.Critical = res.Critical || crit
		res.Defeated = defeated
		if eff.Lifesteal > 0 {
			healed := e.heal(actor, int(float64(dmg)*eff.Lifesteal))
			if healed > 0 {
				findTarget(entry, actor.CreatureID).Healing += healed
			}
		}

	case domain.EffectHeal:
		healed := e.heal(actor, eff.Power)
		findTarget(entry, actor.CreatureID).Healing += healed

	case domain.EffectStatus:
		recipient := &b.Combatants[targetIdx]
		if eff.Status == domain.StatusRegen {
			recipient = actor
		}
		if !recipient.Alive() {
			return
		}
		if source.Float64() < eff.Chance {
			recipient.Statuses = append(recipient.Statuses, domain.ActiveStatus{
				Kind:      eff.Status,
				TurnsLeft: eff.Duration,
				Power:     eff.Power,
			})
			findTarget(entry, recipient.CreatureID).StatusApplied = eff.Status
		}

	case domain.EffectBuff:
		actor.Modifiers = append(actor.Modifiers, domain.ActiveModifier{
			Stat:       eff.Stat,
			Amount:     eff.Amount,
			Multiplier: eff.Multiplier,
			TurnsLeft:  eff.Duration,
			Permanent:  eff.Duration == 0,
		})
		findTarget(entry, actor.CreatureID).BuffStat = eff.Stat

	case domain.EffectDebuff:
		target := &b.Combatants[targetIdx]
		if !target.Alive() {
			return
		}
		target.Modifiers = append(target.Modifiers, domain.ActiveModifier{
			Stat:       eff.Stat,
			Amount:     eff.Amount,
			Multiplier: eff.Multiplier,
			TurnsLeft:  eff.Duration,
			Debuff:     true,
		})
		findTarget(entry, target.CreatureID).DebuffStat = eff.Stat
	}
}

// rollDamage computes one damage effect: base power plus attack minus
// defense, scaled by the element matchup, any amplifying domain effect and
// a possible critical.
func (e *Engine) rollDamage(b *domain.Battle, actor, target *domain.Combatant, ability domain.Ability, eff domain.Effect, source rng.Source) (int, bool) {
	base := eff.Power + effectiveStat(actor, domain.StatAttack) - effectiveStat(target, domain.StatDefense)
	if base < constants.MinDamage {
		base = constants.MinDamage
	}

	element := ability.Element
	if element == "" || element == domain.ElementNeutral {
		element = actor.Element
	}
	mult := e.gd.Matchup(element, target.Element)
	mult *= domainAmplify(b, element)

	crit := source.Float64() < constants.CritChance
	if crit {
		mult *= constants.CritMultiplier
	}

	dmg := int(math.Floor(float64(base) * mult))
	if dmg < constants.MinDamage {
		dmg = constants.MinDamage
	}
	return dmg, crit
}

func (e *Engine) heal(c *domain.Combatant, amount int) int {
	if !c.Alive() || amount <= 0 {
		return 0
	}
	healed := amount
	if c.HP+healed > c.MaxHP {
		healed = c.MaxHP - c.HP
	}
	c.HP += healed
	return healed
}

// applyDomainEffects runs once per round, touching every living combatant
// matching each effect's trigger regardless of whose turn it is. Regen
// ticks are logged under the synthetic actor "domain" so replays stay
// byte-for-byte reconstructible.
func (e *Engine) applyDomainEffects(b *domain.Battle) {
	for _, de := range b.DomainEffects {
		if de.Kind != domain.DomainRegen || de.RegenPower <= 0 {
			continue
		}
		entry := domain.BattleLogEntry{
			Turn:      b.Turn,
			ActorID:   "domain",
			AbilityID: de.Name,
		}
		for i := range b.Combatants {
			c := &b.Combatants[i]
			if !c.Alive() || !de.Matches(c.Element) {
				continue
			}
			if healed := e.heal(c, de.RegenPower); healed > 0 {
				findTarget(&entry, c.CreatureID).Healing += healed
			}
		}
		if len(entry.Targets) > 0 {
			b.Log = append(b.Log, entry)
		}
	}
}

// domainAmplify multiplies together every amplifying domain effect that
// matches the attacking element.
func domainAmplify(b *domain.Battle, element domain.Element) float64 {
	mult := 1.0
	for _, de := range b.DomainEffects {
		if de.Kind == domain.DomainAmplify && de.Matches(element) && de.Magnitude > 0 {
			mult *= de.Magnitude
		}
	}
	return mult
}

// endOfAction ticks the acting combatant's statuses (burn/poison damage,
// regen healing), then decrements status and modifier durations and drops
// the expired ones. Cooldowns count down here too.
func (e *Engine) endOfAction(b *domain.Battle, actorIdx int) {
	c := &b.Combatants[actorIdx]

	for _, st := range c.Statuses {
		switch st.Kind {
		case domain.StatusBurn, domain.StatusPoison:
			c.HP -= st.Power
			if c.HP < 0 {
				c.HP = 0
			}
		case domain.StatusRegen:
			e.heal(c, st.Power)
		}
	}

	kept := c.Statuses[:0]
	for _, st := range c.Statuses {
		st.TurnsLeft--
		if st.TurnsLeft > 0 {
			kept = append(kept, st)
		}
	}
	c.Statuses = kept

	mods := c.Modifiers[:0]
	for _, m := range c.Modifiers {
		if !m.Permanent {
			m.TurnsLeft--
			if m.TurnsLeft <= 0 {
				continue
			}
		}
		mods = append(mods, m)
	}
	c.Modifiers = mods

	for id, cd := range c.Cooldowns {
		if cd <= 1 {
			delete(c.Cooldowns, id)
		} else {
			c.Cooldowns[id] = cd - 1
		}
	}
}

// effectiveStat applies additive modifiers first, multiplicative second.
func effectiveStat(c *domain.Combatant, stat domain.StatName) int {
	var base int
	switch stat {
	case domain.StatAttack:
		base = c.Attack
	case domain.StatDefense:
		base = c.Defense
	case domain.StatSpeed:
		base = c.Speed
	case domain.StatMaxHP:
		base = c.MaxHP
	}
	v := float64(base)
	for _, m := range c.Modifiers {
		if m.Stat == stat {
			v += float64(m.Amount)
		}
	}
	for _, m := range c.Modifiers {
		if m.Stat == stat && m.Multiplier > 0 {
			v *= m.Multiplier
		}
	}
	if v < 0 {
		v = 0
	}
	return int(v)
}

func hasStatus(c *domain.Combatant, kind domain.StatusKind) bool {
	for _, st := range c.Statuses {
		if st.Kind == kind {
			return true
		}
	}
	return false
}

// findTarget returns the per-target result row for id, appending one if
// the entry does not have it yet.
func findTarget(entry *domain.BattleLogEntry, id string) *domain.TargetResult {
	for i := range entry.Targets {
		if entry.Targets[i].CreatureID == id {
			return &entry.Targets[i]
		}
	}
	entry.Targets = append(entry.Targets, domain.TargetResult{CreatureID: id})
	return &entry.Targets[len(entry.Targets)-1]
}
