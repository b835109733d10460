package service

import (
	"context"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"creature-arena/internal/constants"
	"creature-arena/internal/domain"
	"creature-arena/internal/gacha"
	"creature-arena/internal/gamedata"
	"creature-arena/internal/repository"
	"creature-arena/internal/rng"
)

type GachaService struct {
	engine    *gacha.Engine
	gd        *gamedata.GameData
	players   *repository.PlayerRepository
	creatures *repository.CreatureRepository
	rng       rng.Source
	logger    zerolog.Logger
}

func NewGachaService(engine *gacha.Engine, gd *gamedata.GameData, players *repository.PlayerRepository, creatures *repository.CreatureRepository, source rng.Source, logger zerolog.Logger) *GachaService {
	return &GachaService{
		engine:    engine,
		gd:        gd,
		players:   players,
		creatures: creatures,
		rng:       source,
		logger:    logger,
	}
}

type RollOutcome struct {
	Rarity   domain.Rarity    `json:"rarity"`
	Creature *domain.Creature `json:"creature"`
}

type RollResult struct {
	Outcomes   []RollOutcome `json:"outcomes"`
	NewPity    int           `json:"new_pity"`
	CoinsSpent int           `json:"coins_spent"`
}

// RollGacha performs a single roll.
func (s *GachaService) RollGacha(ctx context.Context, playerID string) (*RollResult, error) {
	return s.RollGachaBatch(ctx, playerID, 1)
}

// RollGachaBatch rolls count times. The whole batch is priced before any
// roll happens and rolls evaluate strictly in sequence: each roll's pity
// outcome feeds the next. No write happens until the batch resolved, so a
// failed batch leaves no partial consumption behind.
func (s *GachaService) RollGachaBatch(ctx context.Context, playerID string, count int) (*RollResult, error) {
	if count < 1 || count > constants.MaxBatchRolls {
		return nil, ErrInvalidBatchCount
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	player, err := s.players.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}

	cost := count * constants.GachaRollCost
	if player.Coins < cost {
		return nil, ErrInsufficientCoins
	}
	player.Coins -= cost

	owned, err := s.creatures.OwnedUnfusedTemplates(ctx, playerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := &RollResult{CoinsSpent: cost}
	var created []*domain.Creature

	for i := 0; i < count; i++ {
		rarity, newPity := s.engine.Roll(player.PityCounter)
		player.PityCounter = newPity

		tmpl, ok := s.pickTemplate(rarity, owned)
		if !ok {
			return nil, ErrNoTemplates
		}
		owned[tmpl.ID] = true

		id, err := gonanoid.New()
		if err != nil {
			return nil, fmt.Errorf("failed to generate creature id: %w", err)
		}
		creature := &domain.Creature{
			ID:          id,
			OwnerID:     playerID,
			TemplateID:  tmpl.ID,
			Name:        tmpl.Name,
			Family:      tmpl.Family,
			Element:     tmpl.Element,
			Rarity:      tmpl.Rarity,
			Stats:       tmpl.Stats,
			Passive:     append([]string(nil), tmpl.Passive...),
			Active:      append([]string(nil), tmpl.Active...),
			Ultimate:    append([]string(nil), tmpl.Ultimate...),
			CollectedAt: now,
		}
		player.AddEssence(tmpl.Rarity, constants.RollEssenceGrant)

		created = append(created, creature)
		result.Outcomes = append(result.Outcomes, RollOutcome{Rarity: rarity, Creature: creature})
	}
	result.NewPity = player.PityCounter

	// Economy mutation persists before creature creation.
	if err := s.players.Upsert(ctx, player); err != nil {
		return nil, err
	}
	for _, c := range created {
		if err := s.creatures.Upsert(ctx, c); err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Str("player_id", playerID).
		Int("count", count).
		Int("coins_spent", cost).
		Int("new_pity", player.PityCounter).
		Msg("gacha batch rolled")
	return result, nil
}

// pickTemplate selects a random template of the rolled tier the player
// does not already hold un-fused, falling back one tier down at a time
// when a tier is exhausted.
func (s *GachaService) pickTemplate(rarity domain.Rarity, owned map[string]bool) (gamedata.Template, bool) {
	for rank := rarity.Rank(); rank >= 0; rank-- {
		tier := tierAtRank(rank)
		var candidates []gamedata.Template
		for _, t := range s.gd.TemplatesByRarity(tier) {
			if !owned[t.ID] {
				candidates = append(candidates, t)
			}
		}
		if len(candidates) > 0 {
			return candidates[s.rng.IntN(len(candidates))], true
		}
	}
	return gamedata.Template{}, false
}

func tierAtRank(rank int) domain.Rarity {
	for _, r := range domain.RaritiesByDropOrder {
		if r.Rank() == rank {
			return r
		}
	}
	return domain.RarityCommon
}
