package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"creature-arena/internal/constants"
	"creature-arena/internal/domain"
)

type MatchRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMatchRepository(db *sql.DB, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{db: db, logger: logger}
}

const matchColumns = `id, player_a, player_b, team_a, team_b, async, seed, battle,
	status, winner_id, rewards, created_at, expires_at, updated_at`

func (r *MatchRepository) Get(ctx context.Context, id string) (*domain.Match, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = ?`, id)
	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	return m, nil
}

// HasActive reports whether the player has a pending or in-progress match
// that has not passed its expiry timestamp. Matchmaking uses this as its
// eligibility filter.
func (r *MatchRepository) HasActive(ctx context.Context, playerID string, now time.Time) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM matches
		WHERE (player_a = ? OR player_b = ?)
		  AND status IN (?, ?)
		  AND expires_at > ?`,
		playerID, playerID, string(domain.MatchPending), string(domain.MatchInProgress), now)

	var n int
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("failed to count active matches for %s: %w", playerID, err)
	}
	return n > 0, nil
}

func (r *MatchRepository) Upsert(ctx context.Context, m *domain.Match) error {
	m.UpdatedAt = time.Now()

	teamA, err := json.Marshal(orEmptySlice(m.TeamA))
	if err != nil {
		return fmt.Errorf("failed to encode team a: %w", err)
	}
	teamB, err := json.Marshal(orEmptySlice(m.TeamB))
	if err != nil {
		return fmt.Errorf("failed to encode team b: %w", err)
	}
	var battle, rewards interface{}
	if m.Battle != nil {
		b, err := json.Marshal(m.Battle)
		if err != nil {
			return fmt.Errorf("failed to encode battle: %w", err)
		}
		battle = string(b)
	}
	if m.Rewards != nil {
		b, err := json.Marshal(m.Rewards)
		if err != nil {
			return fmt.Errorf("failed to encode rewards: %w", err)
		}
		rewards = string(b)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO matches (`+matchColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			battle = excluded.battle,
			status = excluded.status,
			winner_id = excluded.winner_id,
			rewards = excluded.rewards,
				expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`,
		m.ID, m.PlayerA, m.PlayerB, string(teamA), string(teamB), m.Async, m.Seed, battle,
		string(m.Status), m.WinnerID, rewards, m.CreatedAt, m.ExpiresAt, m.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("match_id", m.ID).Msg("failed to upsert match")
		return fmt.Errorf("failed to upsert match %s: %w", m.ID, err)
	}
	return nil
}

func scanMatch(row rowScanner) (*domain.Match, error) {
	var m domain.Match
	var teamA, teamB string
	var battle, rewards sql.NullString
	err := row.Scan(&m.ID, &m.PlayerA, &m.PlayerB, &teamA, &teamB, &m.Async, &m.Seed, &battle,
		&m.Status, &m.WinnerID, &rewards, &m.CreatedAt, &m.ExpiresAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(teamA), &m.TeamA); err != nil {
		return nil, fmt.Errorf("failed to decode team a: %w", err)
	}
	if err := json.Unmarshal([]byte(teamB), &m.TeamB); err != nil {
		return nil, fmt.Errorf("failed to decode team b: %w", err)
	}
	if battle.Valid {
		m.Battle = &domain.Battle{}
		if err := json.Unmarshal([]byte(battle.String), m.Battle); err != nil {
			return nil, fmt.Errorf("failed to decode battle: %w", err)
		}
	}
	if rewards.Valid {
		m.Rewards = &domain.MatchRewards{}
		if err := json.Unmarshal([]byte(rewards.String), m.Rewards); err != nil {
			return nil, fmt.Errorf("failed to decode rewards: %w", err)
		}
	}
	return &m, nil
}
