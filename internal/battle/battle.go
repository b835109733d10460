// Package battle resolves turn-based combat between two teams of creature
// snapshots. Resolution is fully synchronous and deterministic: the RNG for
// every action derives from the battle seed and the turn/cursor position,
// so a stored battle replays to the same outcome from its initial state.
package battle

import (
	"errors"
	"sort"

	"creature-arena/internal/constants"
	"creature-arena/internal/domain"
	"creature-arena/internal/gamedata"
	"creature-arena/internal/rng"
)

var (
	ErrBattleComplete = errors.New("battle is already complete")
	ErrNoCombatants   = errors.New("both teams need at least one creature")
	ErrInvalidState   = errors.New("battle state is inconsistent")
)

// Engine carries the reference data battles resolve against.
type Engine struct {
	gd *gamedata.GameData
}

func NewEngine(gd *gamedata.GameData) *Engine {
	return &Engine{gd: gd}
}

// New builds a battle from two team snapshots. Turn order is fixed at
// battle start: all combatants sorted descending by current speed, ties
// broken by stable input order (team A before team B).
func (e *Engine) New(id string, teamA, teamB []*domain.Creature, domainEffects []domain.DomainEffect, seed int64) (*domain.Battle, error) {
	if len(teamA) == 0 || len(teamB) == 0 {
		return nil, ErrNoCombatants
	}

	b := &domain.Battle{
		ID:            id,
		Seed:          seed,
		Phase:         domain.BattleNotStarted,
		DomainEffects: domainEffects,
	}
	for pos, c := range teamA {
		b.Combatants = append(b.Combatants, e.newCombatant(c, domain.TeamA, pos))
	}
	for pos, c := range teamB {
		b.Combatants = append(b.Combatants, e.newCombatant(c, domain.TeamB, pos))
	}

	order := make([]int, len(b.Combatants))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return effectiveStat(&b.Combatants[order[i]], domain.StatSpeed) >
			effectiveStat(&b.Combatants[order[j]], domain.StatSpeed)
	})
	b.Order = order
	return b, nil
}

// newCombatant snapshots a creature into battle state. Passive abilities
// become permanent stat modifiers.
func (e *Engine) newCombatant(c *domain.Creature, team, pos int) domain.Combatant {
	cb := domain.Combatant{
		CreatureID: c.ID,
		Name:       c.Name,
		Team:       team,
		Position:   pos,
		Element:    c.Element,
		HP:         c.Stats.MaxHP,
		MaxHP:      c.Stats.MaxHP,
		Attack:     c.Stats.Attack,
		Defense:    c.Stats.Defense,
		Speed:      c.Stats.Speed,
		Energy:     constants.BaseEnergy,
		Abilities:  append(e.gd.Abilities(c.Active), e.gd.Abilities(c.Ultimate)...),
		Cooldowns:  make(map[string]int),
	}
	for _, p := range e.gd.Abilities(c.Passive) {
		for _, eff := range p.Effects {
			if eff.Kind != domain.EffectBuff {
				continue
			}
			cb.Modifiers = append(cb.Modifiers, domain.ActiveModifier{
				Stat:       eff.Stat,
				Amount:     eff.Amount,
				Multiplier: eff.Multiplier,
				Permanent:  true,
			})
		}
	}
	return cb
}

// ResolveTurn advances the battle by exactly one combatant's action and
// returns the updated state. Calling it on a complete battle is a
// state-conflict error and mutates nothing.
func (e *Engine) ResolveTurn(b *domain.Battle) error {
	if err := validateState(b); err != nil {
		return err
	}
	if b.IsComplete {
		return ErrBattleComplete
	}
	if b.Phase == domain.BattleNotStarted {
		b.Phase = domain.BattleInProgress
	}

	// A new round starts when the cursor wraps: bump the turn counter and
	// apply battlefield-wide effects to every qualifying combatant.
	if b.Cursor == 0 {
		b.Turn++
		e.applyDomainEffects(b)
		if b.IsComplete {
			return nil
		}
		if b.Turn > constants.MaxBattleRounds {
			e.completeByAttrition(b)
			return nil
		}
	}

	actorIdx := b.Order[b.Cursor]
	actor := &b.Combatants[actorIdx]
	source := rng.NewStream(uint64(b.Seed), uint64(b.Turn)<<8|uint64(b.Cursor))

	if actor.Alive() {
		e.act(b, actorIdx, source)
		e.endOfAction(b, actorIdx)
	}

	e.checkTermination(b)
	b.Cursor = (b.Cursor + 1) % len(b.Order)
	return nil
}

// validateState guards turn resolution against battle state the engine did
// not build. The resolver indexes Order and Combatants directly, so the
// cursor and every order entry must be in range before any action runs.
func validateState(b *domain.Battle) error {
	if len(b.Combatants) == 0 || len(b.Order) != len(b.Combatants) {
		return ErrInvalidState
	}
	if b.Cursor < 0 || b.Cursor >= len(b.Order) {
		return ErrInvalidState
	}
	for _, idx := range b.Order {
		if idx < 0 || idx >= len(b.Combatants) {
			return ErrInvalidState
		}
	}
	return nil
}

// Run resolves the battle to completion.
func (e *Engine) Run(b *domain.Battle) error {
	for !b.IsComplete {
		if err := e.ResolveTurn(b); err != nil {
			return err
		}
	}
	return nil
}

// act lets one combatant take its action: stunned combatants skip, the AI
// picks an ability and target, effects apply in declared order.
func (e *Engine) act(b *domain.Battle, actorIdx int, source rng.Source) {
	actor := &b.Combatants[actorIdx]

	if hasStatus(actor, domain.StatusStun) {
		b.Log = append(b.Log, domain.BattleLogEntry{
			Turn:    b.Turn,
			ActorID: actor.CreatureID,
			Skipped: true,
		})
		return
	}

	actor.Energy += constants.EnergyPerTurn
	if actor.Energy > constants.MaxEnergy {
		actor.Energy = constants.MaxEnergy
	}

	choice, ok := e.chooseAction(b, actorIdx)
	if !ok {
		b.Log = append(b.Log, domain.BattleLogEntry{
			Turn:    b.Turn,
			ActorID: actor.CreatureID,
			Skipped: true,
		})
		return
	}

	actor.Energy -= choice.ability.Cost
	if choice.ability.Cooldown > 0 {
		actor.Cooldowns[choice.ability.ID] = choice.ability.Cooldown
	}

	entry := domain.BattleLogEntry{
		Turn:      b.Turn,
		ActorID:   actor.CreatureID,
		AbilityID: choice.ability.ID,
	}

	if source.Float64() >= hitChance {
		target := &b.Combatants[choice.targetIdx]
		entry.Targets = append(entry.Targets, domain.TargetResult{
			CreatureID: target.CreatureID,
			Missed:     true,
		})
		b.Log = append(b.Log, entry)
		return
	}

	for _, eff := range choice.ability.Effects {
		e.applyEffect(b, actorIdx, choice.targetIdx, choice.ability, eff, source, &entry)
	}
	b.Log = append(b.Log, entry)
}

// completeByAttrition ends a stalemated battle at the round cap: the team
// with more remaining HP wins, equal totals are a draw.
func (e *Engine) completeByAttrition(b *domain.Battle) {
	var hpA, hpB int
	for i := range b.Combatants {
		c := &b.Combatants[i]
		if !c.Alive() {
			continue
		}
		if c.Team == domain.TeamA {
			hpA += c.HP
		} else {
			hpB += c.HP
		}
	}
	switch {
	case hpA > hpB:
		b.Winner = domain.WinnerTeamA
	case hpB > hpA:
		b.Winner = domain.WinnerTeamB
	default:
		b.Winner = domain.WinnerDraw
	}
	b.IsComplete = true
	b.Phase = domain.BattleComplete
}

// checkTermination marks the battle complete once a team is wiped. A
// simultaneous wipe in the same resolution step is a draw.
func (e *Engine) checkTermination(b *domain.Battle) {
	if b.IsComplete {
		return
	}
	aliveA, aliveB := false, false
	for i := range b.Combatants {
		c := &b.Combatants[i]
		if !c.Alive() {
			continue
		}
		if c.Team == domain.TeamA {
			aliveA = true
		} else {
			aliveB = true
		}
	}
	switch {
	case aliveA && aliveB:
		return
	case aliveA:
		b.Winner = domain.WinnerTeamA
	case aliveB:
		b.Winner = domain.WinnerTeamB
	default:
		b.Winner = domain.WinnerDraw
	}
	b.IsComplete = true
	b.Phase = domain.BattleComplete
}
