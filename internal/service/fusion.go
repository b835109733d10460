package service

import (
	"context"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"creature-arena/internal/constants"
	"creature-arena/internal/domain"
	"creature-arena/internal/fusion"
	"creature-arena/internal/gamedata"
	"creature-arena/internal/repository"
	"creature-arena/internal/rng"
)

type FusionService struct {
	gd        *gamedata.GameData
	players   *repository.PlayerRepository
	creatures *repository.CreatureRepository
	rng       rng.Source
	logger    zerolog.Logger
}

func NewFusionService(gd *gamedata.GameData, players *repository.PlayerRepository, creatures *repository.CreatureRepository, source rng.Source, logger zerolog.Logger) *FusionService {
	return &FusionService{
		gd:        gd,
		players:   players,
		creatures: creatures,
		rng:       source,
		logger:    logger,
	}
}

// FuseCreatures blends two of the player's creatures with two catalysts.
// The fusion charges essence of the child's tier; parents stay in the
// roster.
func (s *FusionService) FuseCreatures(ctx context.Context, playerID, parentAID, parentBID, catalystAID, catalystBID string) (*domain.Creature, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	player, err := s.players.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	parentA, err := s.creatures.Get(ctx, parentAID)
	if err != nil {
		return nil, err
	}
	parentB, err := s.creatures.Get(ctx, parentBID)
	if err != nil {
		return nil, err
	}
	if parentA.OwnerID != playerID || parentB.OwnerID != playerID {
		return nil, ErrNotOwner
	}

	catA, ok := s.gd.Catalyst(catalystAID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCatalyst, catalystAID)
	}
	catB, ok := s.gd.Catalyst(catalystBID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCatalyst, catalystBID)
	}

	childTier := domain.MaxRarity(parentA.Rarity, parentB.Rarity)
	if player.EssenceOf(childTier) < constants.FusionEssenceCost {
		return nil, ErrInsufficientEssence
	}

	child, err := fusion.Fuse(parentA, parentB, catA, catB, s.rng, time.Now())
	if err != nil {
		return nil, err
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate creature id: %w", err)
	}
	child.ID = id
	child.OwnerID = playerID

	player.AddEssence(childTier, -constants.FusionEssenceCost)

	// Economy mutation persists before creature creation.
	if err := s.players.Upsert(ctx, player); err != nil {
		return nil, err
	}
	if err := s.creatures.Upsert(ctx, child); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("player_id", playerID).
		Str("child_id", child.ID).
		Str("rarity", string(child.Rarity)).
		Int("generation", child.Lineage.Generation).
		Int("mutations", child.Lineage.Mutations).
		Msg("creatures fused")
	return child, nil
}
