package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"creature-arena/internal/constants"
	"creature-arena/internal/domain"
)

type RankingRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewRankingRepository(db *sql.DB, logger zerolog.Logger) *RankingRepository {
	return &RankingRepository{db: db, logger: logger}
}

const rankingColumns = `player_id, rating, division, wins, losses, draws, streak, best_streak, updated_at`

func (r *RankingRepository) Get(ctx context.Context, playerID string) (*domain.Ranking, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+rankingColumns+` FROM rankings WHERE player_id = ?`, playerID)
	rk, err := scanRanking(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ranking for %s: %w", playerID, err)
	}
	return rk, nil
}

// ListByRatingRange returns every ranking inside [min, max], excluding one
// player id. Backs the matchmaking window when the redis index has no
// entries yet.
func (r *RankingRepository) ListByRatingRange(ctx context.Context, min, max int, excludeID string) ([]domain.Ranking, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+rankingColumns+` FROM rankings
		WHERE rating BETWEEN ? AND ? AND player_id != ?
		ORDER BY rating`, min, max, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rankings in range: %w", err)
	}
	defer rows.Close()
	return collectRankings(rows)
}

// ListAll returns the entire pool excluding one player.
func (r *RankingRepository) ListAll(ctx context.Context, excludeID string) ([]domain.Ranking, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+rankingColumns+` FROM rankings WHERE player_id != ? ORDER BY rating`, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rankings: %w", err)
	}
	defer rows.Close()
	return collectRankings(rows)
}

func (r *RankingRepository) Upsert(ctx context.Context, rk *domain.Ranking) error {
	rk.UpdatedAt = time.Now()

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rankings (`+rankingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(player_id) DO UPDATE SET
			rating = excluded.rating,
			division = excluded.division,
			wins = excluded.wins,
			losses = excluded.losses,
			draws = excluded.draws,
			streak = excluded.streak,
			best_streak = excluded.best_streak,
			updated_at = excluded.updated_at`,
		rk.PlayerID, rk.Rating, string(rk.Division), rk.Wins, rk.Losses, rk.Draws,
		rk.Streak, rk.BestStreak, rk.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("player_id", rk.PlayerID).Msg("failed to upsert ranking")
		return fmt.Errorf("failed to upsert ranking for %s: %w", rk.PlayerID, err)
	}
	return nil
}

func scanRanking(row rowScanner) (*domain.Ranking, error) {
	var rk domain.Ranking
	err := row.Scan(&rk.PlayerID, &rk.Rating, &rk.Division, &rk.Wins, &rk.Losses,
		&rk.Draws, &rk.Streak, &rk.BestStreak, &rk.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rk, nil
}

func collectRankings(rows *sql.Rows) ([]domain.Ranking, error) {
	var out []domain.Ranking
	for rows.Next() {
		rk, err := scanRanking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ranking: %w", err)
		}
		out = append(out, *rk)
	}
	return out, rows.Err()
}
