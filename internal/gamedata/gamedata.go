// Package gamedata loads the read-only reference tables the engines run
// against: creature templates, abilities, catalysts, gacha drop rates and
// the element matchup table. Malformed tables are startup-time faults, not
// per-request errors.
package gamedata

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"creature-arena/internal/config"
	"creature-arena/internal/domain"
)

//go:embed gamedata.yaml
var defaultData []byte

type Template struct {
	ID       string           `yaml:"id"`
	Name     string           `yaml:"name"`
	Family   string           `yaml:"family"`
	Element  domain.Element   `yaml:"element"`
	Rarity   domain.Rarity    `yaml:"rarity"`
	Stats    domain.StatBlock `yaml:"stats"`
	Passive  []string         `yaml:"passive"`
	Active   []string         `yaml:"active"`
	Ultimate []string         `yaml:"ultimate"`
}

type Catalyst struct {
	ID              string          `yaml:"id"`
	Name            string          `yaml:"name"`
	BonusMultiplier float64         `yaml:"bonus_multiplier"`
	BiasElement     domain.Element  `yaml:"bias_element"`
	BiasStat        domain.StatName `yaml:"bias_stat"`
}

type document struct {
	DropRates      map[domain.Rarity]float64                    `yaml:"drop_rates"`
	Templates      []Template                                   `yaml:"templates"`
	Abilities      []domain.Ability                             `yaml:"abilities"`
	Catalysts      []Catalyst                                   `yaml:"catalysts"`
	ElementMatchup map[domain.Element]map[domain.Element]float64 `yaml:"element_matchup"`
}

type GameData struct {
	dropRates map[domain.Rarity]float64
	templates map[string]Template
	byRarity  map[domain.Rarity][]Template
	abilities map[string]domain.Ability
	catalysts map[string]Catalyst
	matchup   map[domain.Element]map[domain.Element]float64
}

// Load reads the game data file named by the config, falling back to the
// embedded default tables when no path is set.
func Load(cfg *config.Config, logger zerolog.Logger) (*GameData, error) {
	raw := defaultData
	source := "embedded"
	if cfg.GameDataPath != "" {
		b, err := os.ReadFile(cfg.GameDataPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read game data: %w", err)
		}
		raw = b
		source = cfg.GameDataPath
	}

	gd, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("source", source).
		Int("templates", len(gd.templates)).
		Int("abilities", len(gd.abilities)).
		Int("catalysts", len(gd.catalysts)).
		Msg("game data loaded")
	return gd, nil
}

// Parse decodes and validates a game data document.
func Parse(raw []byte) (*GameData, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse game data: %w", err)
	}

	gd := &GameData{
		dropRates: doc.DropRates,
		templates: make(map[string]Template, len(doc.Templates)),
		byRarity:  make(map[domain.Rarity][]Template),
		abilities: make(map[string]domain.Ability, len(doc.Abilities)),
		catalysts: make(map[string]Catalyst, len(doc.Catalysts)),
		matchup:   doc.ElementMatchup,
	}
	for _, a := range doc.Abilities {
		gd.abilities[a.ID] = a
	}
	for _, t := range doc.Templates {
		gd.templates[t.ID] = t
		gd.byRarity[t.Rarity] = append(gd.byRarity[t.Rarity], t)
	}
	for _, c := range doc.Catalysts {
		gd.catalysts[c.ID] = c
	}

	if err := gd.validate(); err != nil {
		return nil, err
	}
	return gd, nil
}

func (g *GameData) validate() error {
	var sum float64
	for _, r := range domain.RaritiesByDropOrder {
		p, ok := g.dropRates[r]
		if !ok {
			return fmt.Errorf("drop rate missing for rarity %q", r)
		}
		if p < 0 || p > 1 {
			return fmt.Errorf("drop rate for %q out of range: %v", r, p)
		}
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("drop rates sum to %v, want 1.0", sum)
	}

	for _, t := range g.templates {
		for _, group := range [][]string{t.Passive, t.Active, t.Ultimate} {
			for _, id := range group {
				if _, ok := g.abilities[id]; !ok {
					return fmt.Errorf("template %q references unknown ability %q", t.ID, id)
				}
			}
		}
		if len(t.Active) == 0 {
			return fmt.Errorf("template %q has no active abilities", t.ID)
		}
	}

	for att, row := range g.matchup {
		for def, mult := range row {
			if mult <= 0 {
				return fmt.Errorf("element matchup %s->%s has non-positive multiplier %v", att, def, mult)
			}
		}
	}
	return nil
}

// DropRate returns the configured probability for a tier.
func (g *GameData) DropRate(r domain.Rarity) float64 { return g.dropRates[r] }

// Template looks up a creature template by id.
func (g *GameData) Template(id string) (Template, bool) {
	t, ok := g.templates[id]
	return t, ok
}

// TemplatesByRarity returns every template of a tier.
func (g *GameData) TemplatesByRarity(r domain.Rarity) []Template {
	return g.byRarity[r]
}

// Ability looks up reference ability data by id.
func (g *GameData) Ability(id string) (domain.Ability, bool) {
	a, ok := g.abilities[id]
	return a, ok
}

// Abilities resolves a list of ability ids, skipping unknown ids (unknown
// ids cannot occur after validation).
func (g *GameData) Abilities(ids []string) []domain.Ability {
	out := make([]domain.Ability, 0, len(ids))
	for _, id := range ids {
		if a, ok := g.abilities[id]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Catalyst looks up a catalyst by id.
func (g *GameData) Catalyst(id string) (Catalyst, bool) {
	c, ok := g.catalysts[id]
	return c, ok
}

// Matchup returns the damage multiplier of attacker element against
// defender element, 1.0 when the pair is not listed.
func (g *GameData) Matchup(attacker, defender domain.Element) float64 {
	if row, ok := g.matchup[attacker]; ok {
		if m, ok := row[defender]; ok {
			return m
		}
	}
	return 1.0
}
