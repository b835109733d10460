package battle

import (
	"creature-arena/internal/constants"
	"creature-arena/internal/domain"
)

type actionChoice struct {
	ability   domain.Ability
	targetIdx int
}

// chooseAction is the threat-assessment heuristic for AI-controlled sides:
// target the enemy with the lowest remaining HP and pick the usable ability
// with the highest expected damage against it. Abilities without damage
// effects score on their healing and support value, so a badly hurt
// combatant still reaches for a heal. Returns false when nothing is usable
// and the turn is skipped.
func (e *Engine) chooseAction(b *domain.Battle, actorIdx int) (actionChoice, bool) {
	actor := &b.Combatants[actorIdx]

	targetIdx := -1
	for i := range b.Combatants {
		c := &b.Combatants[i]
		if c.Team == actor.Team || !c.Alive() {
			continue
		}
		if targetIdx < 0 || c.HP < b.Combatants[targetIdx].HP {
			targetIdx = i
		}
	}
	if targetIdx < 0 {
		return actionChoice{}, false
	}

	best := actionChoice{targetIdx: targetIdx}
	bestScore := -1.0
	for _, ab := range actor.Abilities {
		if !usable(actor, ab) {
			continue
		}
		score := e.scoreAbility(b, actor, &b.Combatants[targetIdx], ab)
		if score > bestScore {
			bestScore = score
			best.ability = ab
		}
	}
	if bestScore < 0 {
		return actionChoice{}, false
	}
	return best, true
}

func usable(actor *domain.Combatant, ab domain.Ability) bool {
	if ab.Kind != domain.AbilityActive && ab.Kind != domain.AbilityUltimate {
		return false
	}
	if ab.Cost > actor.Energy {
		return false
	}
	return actor.Cooldowns[ab.ID] == 0
}

// scoreAbility estimates the value of an ability against the chosen
// target: expected damage for offensive effects, discounted healing for
// support effects.
func (e *Engine) scoreAbility(b *domain.Battle, actor, target *domain.Combatant, ab domain.Ability) float64 {
	score := 0.0
	for _, eff := range ab.Effects {
		switch eff.Kind {
		case domain.EffectDamage:
			base := eff.Power + effectiveStat(actor, domain.StatAttack) - effectiveStat(target, domain.StatDefense)
			if base < constants.MinDamage {
				base = constants.MinDamage
			}
			element := ab.Element
			if element == "" || element == domain.ElementNeutral {
				element = actor.Element
			}
			score += float64(base) * e.gd.Matchup(element, target.Element) * domainAmplify(b, element)
		case domain.EffectHeal:
			deficit := actor.MaxHP - actor.HP
			heal := eff.Power
			if heal > deficit {
				heal = deficit
			}
			score += float64(heal) * 0.8
		case domain.EffectStatus:
			score += eff.Chance * float64(eff.Power*eff.Duration)
		case domain.EffectBuff, domain.EffectDebuff:
			score += float64(eff.Amount*eff.Duration) * 0.5
		}
	}
	return score
}
