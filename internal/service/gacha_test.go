package service

import (
	"context"
	"errors"
	"testing"

	"creature-arena/internal/constants"
)

func TestRollGachaBatchRejectsBadCounts(t *testing.T) {
	e := newEnv(t)
	e.addPlayer(t, "p1", 10000)

	for _, count := range []int{0, -1, constants.MaxBatchRolls + 1} {
		if _, err := e.gacha.RollGachaBatch(context.Background(), "p1", count); !errors.Is(err, ErrInvalidBatchCount) {
			t.Fatalf("count %d: got err %v, want ErrInvalidBatchCount", count, err)
		}
	}
}

func TestRollGachaBatchPricedUpFront(t *testing.T) {
	e := newEnv(t)
	// Enough for two rolls, asked for three.
	e.addPlayer(t, "p1", 2*constants.GachaRollCost)

	_, err := e.gacha.RollGachaBatch(context.Background(), "p1", 3)
	if !errors.Is(err, ErrInsufficientCoins) {
		t.Fatalf("got err %v, want ErrInsufficientCoins", err)
	}

	p, err := e.players.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("reload player: %v", err)
	}
	if p.Coins != 2*constants.GachaRollCost {
		t.Fatalf("failed batch mutated balance: coins=%d", p.Coins)
	}
	roster, err := e.creatures.ListByOwner(context.Background(), "p1")
	if err != nil {
		t.Fatalf("list roster: %v", err)
	}
	if len(roster) != 0 {
		t.Fatalf("failed batch created %d creatures", len(roster))
	}
}

func TestRollGachaBatchPersistsEverything(t *testing.T) {
	e := newEnv(t)
	e.addPlayer(t, "p1", 1000)

	result, err := e.gacha.RollGachaBatch(context.Background(), "p1", 3)
	if err != nil {
		t.Fatalf("roll batch: %v", err)
	}
	if len(result.Outcomes) != 3 {
		t.Fatalf("outcomes %d, want 3", len(result.Outcomes))
	}
	if result.CoinsSpent != 3*constants.GachaRollCost {
		t.Fatalf("coins spent %d, want %d", result.CoinsSpent, 3*constants.GachaRollCost)
	}

	p, err := e.players.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("reload player: %v", err)
	}
	if p.Coins != 1000-3*constants.GachaRollCost {
		t.Fatalf("coins %d after batch", p.Coins)
	}
	if p.PityCounter != result.NewPity {
		t.Fatalf("persisted pity %d != returned pity %d", p.PityCounter, result.NewPity)
	}

	var essence int
	for _, v := range p.Essence {
		essence += v
	}
	if essence != 3*constants.RollEssenceGrant {
		t.Fatalf("essence granted %d, want %d", essence, 3*constants.RollEssenceGrant)
	}

	roster, err := e.creatures.ListByOwner(context.Background(), "p1")
	if err != nil {
		t.Fatalf("list roster: %v", err)
	}
	if len(roster) != 3 {
		t.Fatalf("roster size %d, want 3", len(roster))
	}
}

func TestRollGachaAvoidsDuplicateTemplates(t *testing.T) {
	e := newEnv(t)
	e.addPlayer(t, "p1", 2*constants.GachaRollCost)

	// Every tier holds at least two templates, so a pair of rolls can
	// always land on distinct ones regardless of where the rarities fall.
	result, err := e.gacha.RollGachaBatch(context.Background(), "p1", 2)
	if err != nil {
		t.Fatalf("roll batch: %v", err)
	}

	seen := make(map[string]bool)
	for _, o := range result.Outcomes {
		if seen[o.Creature.TemplateID] {
			t.Fatalf("template %s rolled twice in one batch", o.Creature.TemplateID)
		}
		seen[o.Creature.TemplateID] = true
	}
}

func TestRollGachaUnknownPlayer(t *testing.T) {
	e := newEnv(t)
	if _, err := e.gacha.RollGacha(context.Background(), "nobody"); err == nil {
		t.Fatal("roll for unknown player should fail")
	}
}
