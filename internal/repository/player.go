package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"creature-arena/internal/constants"
	"creature-arena/internal/domain"
)

var ErrNotFound = errors.New("not found")

type PlayerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPlayerRepository(db *sql.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{db: db, logger: logger}
}

func (r *PlayerRepository) Get(ctx context.Context, id string) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, coins, gems, essence, pity_counter, rating, teams, completed, created_at, updated_at
		FROM players WHERE id = ?`, id)

	var p domain.Player
	var essence, teams, completed string
	err := row.Scan(&p.ID, &p.Coins, &p.Gems, &essence, &p.PityCounter, &p.Rating,
		&teams, &completed, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(essence), &p.Essence); err != nil {
		return nil, fmt.Errorf("failed to decode essence for player %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(teams), &p.Teams); err != nil {
		return nil, fmt.Errorf("failed to decode teams for player %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(completed), &p.Completed); err != nil {
		return nil, fmt.Errorf("failed to decode completed markers for player %s: %w", id, err)
	}
	return &p, nil
}

func (r *PlayerRepository) Upsert(ctx context.Context, p *domain.Player) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = time.Now()

	essence, err := json.Marshal(orEmptyMap(p.Essence))
	if err != nil {
		return fmt.Errorf("failed to encode essence: %w", err)
	}
	teams, err := json.Marshal(orEmptyTeams(p.Teams))
	if err != nil {
		return fmt.Errorf("failed to encode teams: %w", err)
	}
	completed, err := json.Marshal(orEmptySlice(p.Completed))
	if err != nil {
		return fmt.Errorf("failed to encode completed markers: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO players (id, coins, gems, essence, pity_counter, rating, teams, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			coins = excluded.coins,
			gems = excluded.gems,
			essence = excluded.essence,
			pity_counter = excluded.pity_counter,
			rating = excluded.rating,
			teams = excluded.teams,
			completed = excluded.completed,
			updated_at = excluded.updated_at`,
		p.ID, p.Coins, p.Gems, string(essence), p.PityCounter, p.Rating,
		string(teams), string(completed), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("player_id", p.ID).Msg("failed to upsert player")
		return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
	}
	return nil
}

func orEmptyMap(m map[domain.Rarity]int) map[domain.Rarity]int {
	if m == nil {
		return map[domain.Rarity]int{}
	}
	return m
}

func orEmptyTeams(m map[string][]string) map[string][]string {
	if m == nil {
		return map[string][]string{}
	}
	return m
}

func orEmptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
