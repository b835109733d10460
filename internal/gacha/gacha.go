// Package gacha implements the pity-aware rarity roll. The pity counter is
// threaded explicitly through Roll rather than mutated on a shared object,
// so batch rolls and replays stay deterministic under an injected source.
package gacha

import (
	"creature-arena/internal/constants"
	"creature-arena/internal/domain"
	"creature-arena/internal/gamedata"
	"creature-arena/internal/rng"
)

// SoftPityFloor is the minimum tier a soft-pity roll can land on.
const SoftPityFloor = domain.RarityRare

type tierRate struct {
	rarity domain.Rarity
	prob   float64
}

type Engine struct {
	rates []tierRate // rarest first
	top   domain.Rarity
	rng   rng.Source
}

func NewEngine(gd *gamedata.GameData, source rng.Source) *Engine {
	rates := make([]tierRate, 0, len(domain.RaritiesByDropOrder))
	for _, r := range domain.RaritiesByDropOrder {
		rates = append(rates, tierRate{rarity: r, prob: gd.DropRate(r)})
	}
	return &Engine{
		rates: rates,
		top:   domain.RaritiesByDropOrder[0],
		rng:   source,
	}
}

// Roll draws one rarity given the player's pity counter and returns the
// tier together with the new counter value.
//
// Hard pity: a counter at HardPity-1 forces the top tier and resets.
// Soft pity: every SoftPityInterval-th roll zeroes the probability mass of
// tiers below SoftPityFloor. The remaining mass is deliberately not
// re-normalised; a draw past the included mass resolves to the floor tier.
func (e *Engine) Roll(pity int) (domain.Rarity, int) {
	if pity >= constants.HardPity-1 {
		return e.top, 0
	}

	floor := domain.Rarity("")
	if (pity+1)%constants.SoftPityInterval == 0 {
		floor = SoftPityFloor
	}

	tier := e.draw(e.rng.Float64(), floor)
	if tier == e.top {
		return tier, 0
	}
	return tier, pity + 1
}

// draw walks the cumulative table rarest to most common and returns the
// first tier whose cumulative probability exceeds u. Tiers below floor
// contribute no mass; the last eligible tier absorbs any remainder.
func (e *Engine) draw(u float64, floor domain.Rarity) domain.Rarity {
	last := e.top
	var cum float64
	for _, tr := range e.rates {
		if floor != "" && tr.rarity.Rank() < floor.Rank() {
			continue
		}
		cum += tr.prob
		last = tr.rarity
		if u < cum {
			return tr.rarity
		}
	}
	return last
}
