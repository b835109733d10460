package service

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"creature-arena/internal/constants"
	"creature-arena/internal/domain"
	"creature-arena/internal/leaderboard"
	"creature-arena/internal/rating"
	"creature-arena/internal/repository"
	"creature-arena/internal/rng"
)

type MatchmakingService struct {
	rankings *repository.RankingRepository
	matches  *repository.MatchRepository
	index    *leaderboard.Index
	rng      rng.Source
	logger   zerolog.Logger
}

func NewMatchmakingService(rankings *repository.RankingRepository, matches *repository.MatchRepository, index *leaderboard.Index, source rng.Source, logger zerolog.Logger) *MatchmakingService {
	return &MatchmakingService{
		rankings: rankings,
		matches:  matches,
		index:    index,
		rng:      source,
		logger:   logger,
	}
}

type OpponentResult struct {
	OpponentID     string          `json:"opponent_id"`
	Ranking        *domain.Ranking `json:"ranking"`
	WinProbability int             `json:"win_probability"` // percent
}

// FindOpponent searches an expanding rating window around the requester,
// weights the eligible candidates toward close ratings and samples one.
// The requester's ranking is initialised on first contact.
func (s *MatchmakingService) FindOpponent(ctx context.Context, playerID string) (*OpponentResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	rk, err := s.EnsureRanking(ctx, playerID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.findCandidates(ctx, rk)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoOpponents
	}

	chosen := s.sample(rk.Rating, candidates)
	result := &OpponentResult{
		OpponentID:     chosen.PlayerID,
		Ranking:        &chosen,
		WinProbability: rating.WinProbabilityPercent(rk.Rating, chosen.Rating),
	}

	s.logger.Info().
		Str("player_id", playerID).
		Str("opponent_id", chosen.PlayerID).
		Int("rating", rk.Rating).
		Int("opponent_rating", chosen.Rating).
		Int("win_probability", result.WinProbability).
		Msg("opponent found")
	return result, nil
}

// EnsureRanking loads a ranking, creating the default one (and its index
// entry) when the player has none yet.
func (s *MatchmakingService) EnsureRanking(ctx context.Context, playerID string) (*domain.Ranking, error) {
	rk, err := s.rankings.Get(ctx, playerID)
	if err == nil {
		return rk, nil
	}
	if err != repository.ErrNotFound {
		return nil, err
	}

	rk = &domain.Ranking{
		PlayerID: playerID,
		Rating:   constants.DefaultRating,
		Division: rating.Division(constants.DefaultRating),
	}
	if err := s.rankings.Upsert(ctx, rk); err != nil {
		return nil, err
	}
	if err := s.index.Set(ctx, playerID, rk.Rating); err != nil {
		return nil, err
	}
	s.logger.Info().Str("player_id", playerID).Msg("ranking initialised")
	return rk, nil
}

// findCandidates expands the window by RatingWindowStep until eligible
// candidates show up, then falls back to the entire pool. An empty window
// is not an error; only an entirely empty pool is.
func (s *MatchmakingService) findCandidates(ctx context.Context, rk *domain.Ranking) ([]domain.Ranking, error) {
	now := time.Now()
	for w := constants.RatingWindowStep; w <= constants.RatingWindowMax; w += constants.RatingWindowStep {
		pool, err := s.windowPool(ctx, rk, w)
		if err != nil {
			return nil, err
		}
		eligible, err := s.filterEligible(ctx, pool, now)
		if err != nil {
			return nil, err
		}
		if len(eligible) > 0 {
			return eligible, nil
		}
	}

	pool, err := s.wholePool(ctx, rk)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	return s.filterEligible(ctx, pool, now)
}

// windowPool collects the rankings inside one rating window, preferring
// the redis index and scanning sqlite directly when redis is unreachable.
func (s *MatchmakingService) windowPool(ctx context.Context, rk *domain.Ranking, w int) ([]domain.Ranking, error) {
	min, max := rk.Rating-w, rk.Rating+w
	ids, err := s.index.Range(ctx, min, max, rk.PlayerID)
	if err != nil {
		s.logger.Warn().Err(err).Msg("rating index unavailable, scanning rankings table")
		return s.rankings.ListByRatingRange(ctx, min, max, rk.PlayerID)
	}
	return s.hydrate(ctx, ids)
}

// wholePool returns every other ranked player. The index may lag behind
// sqlite, so an unreachable or empty index falls back to the rankings
// table as the source of truth.
func (s *MatchmakingService) wholePool(ctx context.Context, rk *domain.Ranking) ([]domain.Ranking, error) {
	ids, err := s.index.All(ctx, rk.PlayerID)
	if err != nil {
		s.logger.Warn().Err(err).Msg("rating index unavailable, scanning rankings table")
		return s.rankings.ListAll(ctx, rk.PlayerID)
	}
	pool, err := s.hydrate(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return s.rankings.ListAll(ctx, rk.PlayerID)
	}
	return pool, nil
}

// hydrate resolves indexed player ids to ranking rows.
func (s *MatchmakingService) hydrate(ctx context.Context, ids []string) ([]domain.Ranking, error) {
	pool := make([]domain.Ranking, 0, len(ids))
	for _, id := range ids {
		cand, err := s.rankings.Get(ctx, id)
		if err == repository.ErrNotFound {
			continue // index entry without a ranking row
		}
		if err != nil {
			return nil, err
		}
		pool = append(pool, *cand)
	}
	return pool, nil
}

func (s *MatchmakingService) filterEligible(ctx context.Context, pool []domain.Ranking, now time.Time) ([]domain.Ranking, error) {
	var eligible []domain.Ranking
	for _, cand := range pool {
		active, err := s.matches.HasActive(ctx, cand.PlayerID, now)
		if err != nil {
			return nil, err
		}
		if !active {
			eligible = append(eligible, cand)
		}
	}
	return eligible, nil
}

// sample draws one candidate with probability proportional to
// exp(-|ratingDiff| / WindowDecay), favouring close ratings without
// guaranteeing the closest.
func (s *MatchmakingService) sample(playerRating int, candidates []domain.Ranking) domain.Ranking {
	if len(candidates) == 1 {
		return candidates[0]
	}

	weights := make([]float64, len(candidates))
	var total float64
	for i, c := range candidates {
		diff := math.Abs(float64(c.Rating - playerRating))
		weights[i] = math.Exp(-diff / constants.WindowDecay)
		total += weights[i]
	}

	u := s.rng.Float64() * total
	for i, w := range weights {
		u -= w
		if u < 0 {
			return candidates[i]
		}
	}
	return candidates[len(candidates)-1]
}
