package gacha

import (
	"testing"

	"creature-arena/internal/constants"
	"creature-arena/internal/domain"
	"creature-arena/internal/gamedata"
	"creature-arena/internal/rng"
)

const testRates = `
drop_rates:
  legendary: 0.01
  epic: 0.05
  rare: 0.14
  uncommon: 0.30
  common: 0.50
`

// fixedSource always returns the same uniform draw.
type fixedSource struct{ u float64 }

func (f fixedSource) Float64() float64 { return f.u }
func (f fixedSource) IntN(n int) int   { return 0 }

func testEngine(t *testing.T, source rng.Source) *Engine {
	t.Helper()
	gd, err := gamedata.Parse([]byte(testRates))
	if err != nil {
		t.Fatalf("parse rates: %v", err)
	}
	return NewEngine(gd, source)
}

func TestHardPityForcesTopTier(t *testing.T) {
	// An unlucky draw would land on common without the guarantee.
	e := testEngine(t, fixedSource{u: 0.999})

	tier, pity := e.Roll(constants.HardPity - 1)
	if tier != domain.RarityLegendary {
		t.Fatalf("hard pity roll landed on %s, want legendary", tier)
	}
	if pity != 0 {
		t.Fatalf("pity should reset after hard pity, got %d", pity)
	}
}

func TestSoftPityRaisesFloor(t *testing.T) {
	e := testEngine(t, fixedSource{u: 0.999})

	// Ninth counter value means the tenth roll: the floor applies and the
	// worst draw still resolves to the floor tier.
	tier, pity := e.Roll(constants.SoftPityInterval - 1)
	if tier != SoftPityFloor {
		t.Fatalf("soft pity roll landed on %s, want %s", tier, SoftPityFloor)
	}
	if pity != constants.SoftPityInterval {
		t.Fatalf("pity after soft pity roll: got %d, want %d", pity, constants.SoftPityInterval)
	}
}

func TestOrdinaryRollNoFloor(t *testing.T) {
	e := testEngine(t, fixedSource{u: 0.999})

	tier, pity := e.Roll(3)
	if tier != domain.RarityCommon {
		t.Fatalf("unlucky ordinary roll landed on %s, want common", tier)
	}
	if pity != 4 {
		t.Fatalf("pity should increment on a non-top roll, got %d", pity)
	}
}

func TestTopTierResetsPity(t *testing.T) {
	e := testEngine(t, fixedSource{u: 0.001})

	tier, pity := e.Roll(42)
	if tier != domain.RarityLegendary {
		t.Fatalf("lucky roll landed on %s, want legendary", tier)
	}
	if pity != 0 {
		t.Fatalf("pity should reset on a top-tier roll, got %d", pity)
	}
}

func TestSeededRollsReproducible(t *testing.T) {
	a := testEngine(t, rng.NewSeeded(7))
	b := testEngine(t, rng.NewSeeded(7))

	pityA, pityB := 0, 0
	for i := 0; i < 200; i++ {
		tierA, nextA := a.Roll(pityA)
		tierB, nextB := b.Roll(pityB)
		if tierA != tierB || nextA != nextB {
			t.Fatalf("roll %d diverged: (%s,%d) vs (%s,%d)", i, tierA, nextA, tierB, nextB)
		}
		pityA, pityB = nextA, nextB
	}
}

func TestPityNeverReachesHardPity(t *testing.T) {
	e := testEngine(t, rng.NewSeeded(99))

	pity := 0
	for i := 0; i < 1000; i++ {
		_, pity = e.Roll(pity)
		if pity >= constants.HardPity {
			t.Fatalf("pity counter escaped the guarantee: %d", pity)
		}
	}
}
