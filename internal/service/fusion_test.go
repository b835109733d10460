package service

import (
	"context"
	"errors"
	"testing"

	"creature-arena/internal/constants"
	"creature-arena/internal/domain"
)

func TestFuseCreaturesHappyPath(t *testing.T) {
	e := newEnv(t)
	p := e.addPlayer(t, "p1", 0)
	p.AddEssence(domain.RarityEpic, constants.FusionEssenceCost+5)
	if err := e.players.Upsert(context.Background(), p); err != nil {
		t.Fatalf("seed essence: %v", err)
	}
	e.addCreature(t, "cr_a", "p1", domain.RarityRare, 25)
	e.addCreature(t, "cr_b", "p1", domain.RarityEpic, 30)

	child, err := e.fusion.FuseCreatures(context.Background(), "p1", "cr_a", "cr_b", "cat_prism", "cat_tide_pearl")
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}

	if child.Rarity != domain.RarityEpic {
		t.Fatalf("child rarity %s, want epic", child.Rarity)
	}
	if child.Lineage == nil || child.Lineage.Generation != 1 {
		t.Fatalf("lineage not recorded: %+v", child.Lineage)
	}

	stored, err := e.creatures.Get(context.Background(), child.ID)
	if err != nil {
		t.Fatalf("child not persisted: %v", err)
	}
	if stored.Lineage == nil || stored.Lineage.ParentAID != "cr_a" {
		t.Fatalf("persisted lineage wrong: %+v", stored.Lineage)
	}

	reloaded, err := e.players.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("reload player: %v", err)
	}
	if got := reloaded.EssenceOf(domain.RarityEpic); got != 5 {
		t.Fatalf("essence after fusion %d, want 5", got)
	}

	// Parents stay in the roster.
	if _, err := e.creatures.Get(context.Background(), "cr_a"); err != nil {
		t.Fatalf("parent consumed: %v", err)
	}
}

func TestFuseCreaturesInsufficientEssence(t *testing.T) {
	e := newEnv(t)
	e.addPlayer(t, "p1", 0)
	e.addCreature(t, "cr_a", "p1", domain.RarityRare, 25)
	e.addCreature(t, "cr_b", "p1", domain.RarityRare, 30)

	_, err := e.fusion.FuseCreatures(context.Background(), "p1", "cr_a", "cr_b", "cat_prism", "cat_prism")
	if !errors.Is(err, ErrInsufficientEssence) {
		t.Fatalf("got err %v, want ErrInsufficientEssence", err)
	}

	roster, err := e.creatures.ListByOwner(context.Background(), "p1")
	if err != nil {
		t.Fatalf("list roster: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("failed fusion changed the roster: %d creatures", len(roster))
	}
}

func TestFuseCreaturesOwnershipEnforced(t *testing.T) {
	e := newEnv(t)
	p := e.addPlayer(t, "p1", 0)
	p.AddEssence(domain.RarityRare, constants.FusionEssenceCost)
	if err := e.players.Upsert(context.Background(), p); err != nil {
		t.Fatalf("seed essence: %v", err)
	}
	e.addPlayer(t, "p2", 0)
	e.addCreature(t, "cr_mine", "p1", domain.RarityRare, 25)
	e.addCreature(t, "cr_theirs", "p2", domain.RarityRare, 30)

	_, err := e.fusion.FuseCreatures(context.Background(), "p1", "cr_mine", "cr_theirs", "cat_prism", "cat_prism")
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("got err %v, want ErrNotOwner", err)
	}
}

func TestFuseCreaturesUnknownCatalyst(t *testing.T) {
	e := newEnv(t)
	p := e.addPlayer(t, "p1", 0)
	p.AddEssence(domain.RarityRare, constants.FusionEssenceCost)
	if err := e.players.Upsert(context.Background(), p); err != nil {
		t.Fatalf("seed essence: %v", err)
	}
	e.addCreature(t, "cr_a", "p1", domain.RarityRare, 25)
	e.addCreature(t, "cr_b", "p1", domain.RarityRare, 30)

	_, err := e.fusion.FuseCreatures(context.Background(), "p1", "cr_a", "cr_b", "cat_bogus", "cat_prism")
	if !errors.Is(err, ErrUnknownCatalyst) {
		t.Fatalf("got err %v, want ErrUnknownCatalyst", err)
	}
}
