package gamedata

import (
	"math"
	"strings"
	"testing"

	"creature-arena/internal/domain"
)

func TestEmbeddedTablesValid(t *testing.T) {
	gd, err := Parse(defaultData)
	if err != nil {
		t.Fatalf("embedded tables failed validation: %v", err)
	}

	var sum float64
	for _, r := range domain.RaritiesByDropOrder {
		sum += gd.DropRate(r)
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Fatalf("embedded drop rates sum to %v", sum)
	}

	if _, ok := gd.Template("tmpl_emberwolf"); !ok {
		t.Fatal("embedded tables missing tmpl_emberwolf")
	}
	if got := len(gd.TemplatesByRarity(domain.RarityLegendary)); got == 0 {
		t.Fatal("embedded tables have no legendary templates")
	}
	if _, ok := gd.Catalyst("cat_prism"); !ok {
		t.Fatal("embedded tables missing cat_prism")
	}
}

func TestParseRejectsBadDropRateSum(t *testing.T) {
	_, err := Parse([]byte(`
drop_rates:
  legendary: 0.01
  epic: 0.05
  rare: 0.14
  uncommon: 0.30
  common: 0.60
`))
	if err == nil || !strings.Contains(err.Error(), "drop rates sum") {
		t.Fatalf("bad sum accepted: err=%v", err)
	}
}

func TestParseRejectsMissingTier(t *testing.T) {
	_, err := Parse([]byte(`
drop_rates:
  legendary: 0.20
  epic: 0.20
  rare: 0.20
  uncommon: 0.40
`))
	if err == nil || !strings.Contains(err.Error(), "drop rate missing") {
		t.Fatalf("missing tier accepted: err=%v", err)
	}
}

func TestParseRejectsUnknownAbilityRef(t *testing.T) {
	_, err := Parse([]byte(`
drop_rates:
  legendary: 0.01
  epic: 0.05
  rare: 0.14
  uncommon: 0.30
  common: 0.50
templates:
  - id: tmpl_ghost
    name: Ghost
    rarity: common
    active: [ab_does_not_exist]
`))
	if err == nil || !strings.Contains(err.Error(), "unknown ability") {
		t.Fatalf("dangling ability ref accepted: err=%v", err)
	}
}

func TestParseRejectsTemplateWithoutActive(t *testing.T) {
	_, err := Parse([]byte(`
drop_rates:
  legendary: 0.01
  epic: 0.05
  rare: 0.14
  uncommon: 0.30
  common: 0.50
templates:
  - id: tmpl_pacifist
    name: Pacifist
    rarity: common
`))
	if err == nil || !strings.Contains(err.Error(), "no active abilities") {
		t.Fatalf("template without actives accepted: err=%v", err)
	}
}

func TestMatchupDefaultsToNeutral(t *testing.T) {
	gd, err := Parse(defaultData)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m := gd.Matchup(domain.ElementFire, domain.ElementEarth); m <= 1.0 {
		t.Fatalf("fire vs earth should be advantaged, got %v", m)
	}
	if m := gd.Matchup(domain.ElementNeutral, domain.ElementFire); m != 1.0 {
		t.Fatalf("unlisted matchup should be 1.0, got %v", m)
	}
}
