package service

import (
	"context"
	"fmt"
	"math"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"creature-arena/internal/battle"
	"creature-arena/internal/constants"
	"creature-arena/internal/domain"
	"creature-arena/internal/leaderboard"
	"creature-arena/internal/rating"
	"creature-arena/internal/repository"
	"creature-arena/internal/rng"
)

type MatchService struct {
	players     *repository.PlayerRepository
	creatures   *repository.CreatureRepository
	rankings    *repository.RankingRepository
	matches     *repository.MatchRepository
	index       *leaderboard.Index
	battles     *battle.Engine
	matchmaking *MatchmakingService
	logger      zerolog.Logger
}

func NewMatchService(
	players *repository.PlayerRepository,
	creatures *repository.CreatureRepository,
	rankings *repository.RankingRepository,
	matches *repository.MatchRepository,
	index *leaderboard.Index,
	battles *battle.Engine,
	matchmaking *MatchmakingService,
	logger zerolog.Logger,
) *MatchService {
	return &MatchService{
		players:     players,
		creatures:   creatures,
		rankings:    rankings,
		matches:     matches,
		index:       index,
		battles:     battles,
		matchmaking: matchmaking,
		logger:      logger,
	}
}

// CreateAsyncMatch stores a pending match against the opponent's defending
// team. The battle itself is resolved at completion time from the stored
// seed, so the opponent never has to be online.
func (s *MatchService) CreateAsyncMatch(ctx context.Context, playerID, opponentID string, teamIDs []string) (*domain.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if playerID == opponentID {
		return nil, ErrSelfMatch
	}
	if len(teamIDs) < constants.TeamSizeMin || len(teamIDs) > constants.TeamSizeMax {
		return nil, ErrTeamSize
	}
	for _, id := range teamIDs {
		c, err := s.creatures.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load team member %s: %w", id, err)
		}
		if c.OwnerID != playerID {
			return nil, ErrNotOwner
		}
	}

	opponentTeam, err := s.defendingTeam(ctx, opponentID)
	if err != nil {
		return nil, err
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generate match id: %w", err)
	}

	now := time.Now()
	m := &domain.Match{
		ID:        id,
		PlayerA:   playerID,
		PlayerB:   opponentID,
		TeamA:     teamIDs,
		TeamB:     opponentTeam,
		Async:     true,
		Seed:      rng.Seed(),
		Status:    domain.MatchPending,
		CreatedAt: now,
		ExpiresAt: now.Add(constants.MatchTTL),
		UpdatedAt: now,
	}
	if err := s.matches.Upsert(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("match_id", m.ID).
		Str("player_a", playerID).
		Str("player_b", opponentID).
		Int("team_size", len(teamIDs)).
		Time("expires_at", m.ExpiresAt).
		Msg("async match created")
	return m, nil
}

// defendingTeam is the opponent's named default team, or up to TeamSizeMax
// of their roster when none is set.
func (s *MatchService) defendingTeam(ctx context.Context, opponentID string) ([]string, error) {
	opp, err := s.players.Get(ctx, opponentID)
	if err != nil {
		return nil, fmt.Errorf("load opponent %s: %w", opponentID, err)
	}
	if team := opp.Teams["default"]; len(team) > 0 {
		return team, nil
	}

	roster, err := s.creatures.ListByOwner(ctx, opponentID)
	if err != nil {
		return nil, err
	}
	if len(roster) == 0 {
		return nil, ErrOpponentNoTeam
	}
	n := len(roster)
	if n > constants.TeamSizeMax {
		n = constants.TeamSizeMax
	}
	team := make([]string, 0, n)
	for _, c := range roster[:n] {
		team = append(team, c.ID)
	}
	return team, nil
}

// CompleteMatch transitions a match to its terminal state: it runs the
// stored battle when the caller has not supplied a winner, settles ratings
// symmetrically, pays out rewards and updates creature records. Expiry is
// applied lazily on access.
func (s *MatchService) CompleteMatch(ctx context.Context, matchID, callerID, winnerID string) (*domain.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	m, err := s.matches.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.Participant(callerID) {
		return nil, ErrNotParticipant
	}
	if m.Status == domain.MatchCompleted {
		return nil, ErrMatchCompleted
	}
	if m.Status == domain.MatchExpired {
		return nil, ErrMatchExpired
	}
	now := time.Now()
	if now.After(m.ExpiresAt) {
		m.Status = domain.MatchExpired
		m.UpdatedAt = now
		if err := s.matches.Upsert(ctx, m); err != nil {
			return nil, err
		}
		return nil, ErrMatchExpired
	}

	if winnerID == "" {
		// Mark the match while its battle resolves. A failure below
		// leaves it in_progress, which still counts as active for
		// matchmaking eligibility until the TTL lapses.
		m.Status = domain.MatchInProgress
		m.UpdatedAt = now
		if err := s.matches.Upsert(ctx, m); err != nil {
			return nil, err
		}
		winnerID, err = s.resolveBattle(ctx, m)
		if err != nil {
			return nil, err
		}
	} else if winnerID != "draw" && !m.Participant(winnerID) {
		return nil, ErrNotParticipant
	}

	if err := s.settle(ctx, m, winnerID, now); err != nil {
		return nil, err
	}

	m.Status = domain.MatchCompleted
	m.UpdatedAt = now
	if err := s.matches.Upsert(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("match_id", m.ID).
		Str("winner_id", m.WinnerID).
		Int("winner_rating_delta", ratingDeltaOf(m)).
		Msg("match completed")
	return m, nil
}

func ratingDeltaOf(m *domain.Match) int {
	if m.Rewards == nil {
		return 0
	}
	return m.Rewards.WinnerRatingDelta
}

// resolveBattle runs the seeded battle between the stored teams and maps
// the battle verdict back onto player ids.
func (s *MatchService) resolveBattle(ctx context.Context, m *domain.Match) (string, error) {
	teamA, err := s.loadTeam(ctx, m.TeamA)
	if err != nil {
		return "", err
	}
	teamB, err := s.loadTeam(ctx, m.TeamB)
	if err != nil {
		return "", err
	}

	b, err := s.battles.New(m.ID, teamA, teamB, nil, m.Seed)
	if err != nil {
		return "", err
	}
	if err := s.battles.Run(b); err != nil {
		return "", err
	}
	m.Battle = b

	s.recordCombatants(ctx, b)

	switch b.Winner {
	case domain.WinnerTeamA:
		return m.PlayerA, nil
	case domain.WinnerTeamB:
		return m.PlayerB, nil
	default:
		return "draw", nil
	}
}

func (s *MatchService) loadTeam(ctx context.Context, ids []string) ([]*domain.Creature, error) {
	team := make([]*domain.Creature, 0, len(ids))
	for _, id := range ids {
		c, err := s.creatures.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load creature %s: %w", id, err)
		}
		team = append(team, c)
	}
	return team, nil
}

// recordCombatants folds battle aggregates back into creature records.
// Failures here are logged and swallowed; the match outcome must not
// depend on per-creature bookkeeping.
func (s *MatchService) recordCombatants(ctx context.Context, b *domain.Battle) {
	damage := make(map[string]int)
	for _, entry := range b.Log {
		for _, t := range entry.Targets {
			damage[entry.ActorID] += t.Damage
		}
	}

	for _, c := range b.Combatants {
		cr, err := s.creatures.Get(ctx, c.CreatureID)
		if err != nil {
			s.logger.Warn().Err(err).Str("creature_id", c.CreatureID).Msg("skipping combatant record")
			continue
		}
		won := (c.Team == domain.TeamA && b.Winner == domain.WinnerTeamA) ||
			(c.Team == domain.TeamB && b.Winner == domain.WinnerTeamB)
		if won {
			cr.Wins++
		} else if b.Winner != domain.WinnerDraw {
			cr.Losses++
		}
		cr.DamageDone += damage[c.CreatureID]
		if err := s.creatures.Upsert(ctx, cr); err != nil {
			s.logger.Warn().Err(err).Str("creature_id", c.CreatureID).Msg("skipping combatant record")
		}
	}
}

// settle applies rating movement, division changes, streaks and rewards.
// Rating deltas are equal in magnitude and opposite in sign; the loser is
// clamped at zero.
func (s *MatchService) settle(ctx context.Context, m *domain.Match, winnerID string, now time.Time) error {
	rkA, err := s.matchmaking.EnsureRanking(ctx, m.PlayerA)
	if err != nil {
		return err
	}
	rkB, err := s.matchmaking.EnsureRanking(ctx, m.PlayerB)
	if err != nil {
		return err
	}

	if winnerID == "draw" {
		s.settleDraw(m, rkA, rkB)
	} else {
		winner, loser := rkA, rkB
		if winnerID == m.PlayerB {
			winner, loser = rkB, rkA
		}
		s.settleDecisive(m, winner, loser)
		m.WinnerID = winnerID
	}

	rkA.Division = rating.Division(rkA.Rating)
	rkB.Division = rating.Division(rkB.Rating)
	rkA.UpdatedAt = now
	rkB.UpdatedAt = now

	if err := s.rankings.Upsert(ctx, rkA); err != nil {
		return err
	}
	if err := s.rankings.Upsert(ctx, rkB); err != nil {
		return err
	}

	rewards, err := s.payout(ctx, m, rkA, rkB)
	if err != nil {
		return err
	}
	m.Rewards = rewards

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.index.Set(gctx, rkA.PlayerID, rkA.Rating) })
	g.Go(func() error { return s.index.Set(gctx, rkB.PlayerID, rkB.Rating) })
	if err := g.Wait(); err != nil {
		// The sqlite rows already moved; the index catches up on the
		// next settlement for these players.
		s.logger.Warn().Err(err).Str("match_id", m.ID).Msg("rating index update failed")
	}
	return nil
}

func (s *MatchService) settleDecisive(m *domain.Match, winner, loser *domain.Ranking) {
	delta := rating.Delta(winner.Rating, loser.Rating, rating.ScoreWin)
	winner.Rating = rating.Clamp(winner.Rating + delta)
	loser.Rating = rating.Clamp(loser.Rating - delta)

	winner.Wins++
	winner.Streak++
	if winner.Streak > winner.BestStreak {
		winner.BestStreak = winner.Streak
	}
	loser.Losses++
	loser.Streak = 0

	m.Rewards = &domain.MatchRewards{WinnerRatingDelta: delta, LoserRatingDelta: -delta}
}

func (s *MatchService) settleDraw(m *domain.Match, rkA, rkB *domain.Ranking) {
	deltaA := rating.Delta(rkA.Rating, rkB.Rating, rating.ScoreDraw)
	rkA.Rating = rating.Clamp(rkA.Rating + deltaA)
	rkB.Rating = rating.Clamp(rkB.Rating - deltaA)

	rkA.Draws++
	rkB.Draws++
	rkA.Streak = 0
	rkB.Streak = 0

	m.WinnerID = ""
	m.Rewards = &domain.MatchRewards{WinnerRatingDelta: deltaA, LoserRatingDelta: -deltaA}
}

// payout credits coins and gems. A draw pays both sides the consolation
// amount; a decisive result scales the winner's purse by division.
func (s *MatchService) payout(ctx context.Context, m *domain.Match, rkA, rkB *domain.Ranking) (*domain.MatchRewards, error) {
	rewards := m.Rewards
	if rewards == nil {
		rewards = &domain.MatchRewards{}
	}

	if m.WinnerID == "" {
		rewards.WinnerCoins = constants.LoserBaseCoins
		rewards.LoserCoins = constants.LoserBaseCoins
		if err := s.credit(ctx, rkA, constants.LoserBaseCoins, 0); err != nil {
			return nil, err
		}
		if err := s.credit(ctx, rkB, constants.LoserBaseCoins, 0); err != nil {
			return nil, err
		}
		return rewards, nil
	}

	winner, loser := rkA, rkB
	if m.WinnerID == m.PlayerB {
		winner, loser = rkB, rkA
	}
	winMult := rating.DivisionMultiplier(winner.Division)
	loseMult := rating.DivisionMultiplier(loser.Division)

	rewards.WinnerCoins = int(math.Round(constants.WinnerBaseCoins * winMult))
	rewards.WinnerGems = int(math.Round(float64(abs(rewards.WinnerRatingDelta)) * winMult))
	rewards.LoserCoins = int(math.Round(constants.LoserBaseCoins * loseMult))

	if err := s.credit(ctx, winner, rewards.WinnerCoins, rewards.WinnerGems); err != nil {
		return nil, err
	}
	if err := s.credit(ctx, loser, rewards.LoserCoins, 0); err != nil {
		return nil, err
	}
	return rewards, nil
}

// credit pays out a purse and keeps the denormalized player rating in step
// with the settled ranking.
func (s *MatchService) credit(ctx context.Context, rk *domain.Ranking, coins, gems int) error {
	p, err := s.players.Get(ctx, rk.PlayerID)
	if err != nil {
		return fmt.Errorf("load player %s: %w", rk.PlayerID, err)
	}
	p.Coins += coins
	p.Gems += gems
	p.Rating = rk.Rating
	return s.players.Upsert(ctx, p)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
