// Package fusion blends two owned creatures into a new one and records the
// lineage. Parents are not consumed here; consumption policy belongs to the
// economy layer.
package fusion

import (
	"errors"
	"math"
	"time"

	"creature-arena/internal/constants"
	"creature-arena/internal/domain"
	"creature-arena/internal/gamedata"
	"creature-arena/internal/rng"
)

var ErrSameCreature = errors.New("cannot fuse a creature with itself")

// Fuse produces the child creature. Each output stat is
// floor(avg(parents)) plus a bounded random bonus drawn independently per
// stat; the bonus ceiling is a fraction of the average, scaled by the
// catalysts. The caller assigns the child's ID and owner.
func Fuse(parentA, parentB *domain.Creature, catA, catB gamedata.Catalyst, source rng.Source, now time.Time) (*domain.Creature, error) {
	if parentA.ID == parentB.ID {
		return nil, ErrSameCreature
	}

	catalystMult := catalystMultiplier(catA, catB)
	mutations := 0

	blend := func(stat domain.StatName, a, b int) int {
		avg := (a + b) / 2
		bonusMax := int(math.Floor(float64(avg) * constants.FusionBonusFraction * catalystMult))
		var bonus int
		if bonusMax > 0 {
			bonus = source.IntN(bonusMax + 1)
		}
		if float64(bonus) > float64(avg)*constants.NotableBonusFraction {
			mutations++
		}
		for _, cat := range []gamedata.Catalyst{catA, catB} {
			if cat.BiasStat == stat {
				bonus += int(float64(avg) * constants.CatalystBiasFraction)
			}
		}
		return avg + bonus
	}

	maxHP := blend(domain.StatMaxHP, parentA.Stats.MaxHP, parentB.Stats.MaxHP)
	stats := domain.StatBlock{
		MaxHP:   maxHP,
		HP:      maxHP,
		Attack:  blend(domain.StatAttack, parentA.Stats.Attack, parentB.Stats.Attack),
		Defense: blend(domain.StatDefense, parentA.Stats.Defense, parentB.Stats.Defense),
		Speed:   blend(domain.StatSpeed, parentA.Stats.Speed, parentB.Stats.Speed),
	}

	dominant, other := parentA, parentB
	if parentB.Rarity.Rank() > parentA.Rarity.Rank() {
		dominant, other = parentB, parentA
	}

	child := &domain.Creature{
		OwnerID: parentA.OwnerID,
		Name:    hybridName(parentA.Name, parentB.Name),
		Family:  dominant.Family,
		Element: dominant.Element,
		Rarity:  domain.MaxRarity(parentA.Rarity, parentB.Rarity),
		Stats:   stats,
		Passive: mergeIDs(parentA.Passive, parentB.Passive, 2),
		Active:  mergeIDs(parentA.Active, parentB.Active, 3),
		Ultimate: func() []string {
			if len(dominant.Ultimate) > 0 {
				return append([]string(nil), dominant.Ultimate...)
			}
			return append([]string(nil), other.Ultimate...)
		}(),
		Lineage: &domain.Lineage{
			Generation:    maxGeneration(parentA, parentB) + 1,
			ParentAID:     parentA.ID,
			ParentBID:     parentB.ID,
			ParentAFamily: parentA.Family,
			ParentBFamily: parentB.Family,
			CatalystAID:   catA.ID,
			CatalystBID:   catB.ID,
			Mutations:     mutations,
			FusedAt:       now,
		},
		CollectedAt: now,
	}
	return child, nil
}

func catalystMultiplier(catA, catB gamedata.Catalyst) float64 {
	mult := func(c gamedata.Catalyst) float64 {
		if c.BonusMultiplier <= 0 {
			return 1.0
		}
		return c.BonusMultiplier
	}
	return (mult(catA) + mult(catB)) / 2
}

func maxGeneration(a, b *domain.Creature) int {
	ga, gb := 0, 0
	if a.Lineage != nil {
		ga = a.Lineage.Generation
	}
	if b.Lineage != nil {
		gb = b.Lineage.Generation
	}
	if ga > gb {
		return ga
	}
	return gb
}

func mergeIDs(a, b []string, limit int) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, limit)
	for _, id := range append(append([]string(nil), a...), b...) {
		if seen[id] || len(out) == limit {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// hybridName joins the first half of one parent's name with the second
// half of the other's.
func hybridName(a, b string) string {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return a + b
	}
	return string(ra[:(len(ra)+1)/2]) + string(rb[len(rb)/2:])
}
