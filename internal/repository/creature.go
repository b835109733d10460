package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"creature-arena/internal/constants"
	"creature-arena/internal/domain"
)

type CreatureRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewCreatureRepository(db *sql.DB, logger zerolog.Logger) *CreatureRepository {
	return &CreatureRepository{db: db, logger: logger}
}

const creatureColumns = `id, owner_id, template_id, name, family, element, rarity,
	hp, max_hp, attack, defense, speed, passive, active, ultimate, lineage,
	wins, losses, damage_done, collected_at`

func (r *CreatureRepository) Get(ctx context.Context, id string) (*domain.Creature, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+creatureColumns+` FROM creatures WHERE id = ?`, id)
	c, err := scanCreature(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get creature %s: %w", id, err)
	}
	return c, nil
}

func (r *CreatureRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Creature, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+creatureColumns+` FROM creatures WHERE owner_id = ? ORDER BY collected_at`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list creatures for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	var out []domain.Creature
	for rows.Next() {
		c, err := scanCreature(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan creature: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// OwnedUnfusedTemplates returns the set of origin template ids the owner
// currently holds un-fused duplicates of. Used by the gacha duplicate
// check: a player may not hold two un-fused creatures from one template.
func (r *CreatureRepository) OwnedUnfusedTemplates(ctx context.Context, ownerID string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT template_id FROM creatures
		WHERE owner_id = ? AND template_id != '' AND lineage IS NULL`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned templates for %s: %w", ownerID, err)
	}
	defer rows.Close()

	owned := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan template id: %w", err)
		}
		owned[id] = true
	}
	return owned, rows.Err()
}

func (r *CreatureRepository) Upsert(ctx context.Context, c *domain.Creature) error {
	passive, err := json.Marshal(orEmptySlice(c.Passive))
	if err != nil {
		return fmt.Errorf("failed to encode passive abilities: %w", err)
	}
	active, err := json.Marshal(orEmptySlice(c.Active))
	if err != nil {
		return fmt.Errorf("failed to encode active abilities: %w", err)
	}
	ultimate, err := json.Marshal(orEmptySlice(c.Ultimate))
	if err != nil {
		return fmt.Errorf("failed to encode ultimate abilities: %w", err)
	}
	var lineage interface{}
	if c.Lineage != nil {
		b, err := json.Marshal(c.Lineage)
		if err != nil {
			return fmt.Errorf("failed to encode lineage: %w", err)
		}
		lineage = string(b)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO creatures (`+creatureColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			wins = excluded.wins,
			losses = excluded.losses,
			damage_done = excluded.damage_done`,
		c.ID, c.OwnerID, c.TemplateID, c.Name, c.Family, string(c.Element), string(c.Rarity),
		c.Stats.HP, c.Stats.MaxHP, c.Stats.Attack, c.Stats.Defense, c.Stats.Speed,
		string(passive), string(active), string(ultimate), lineage,
		c.Wins, c.Losses, c.DamageDone, c.CollectedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("creature_id", c.ID).Msg("failed to upsert creature")
		return fmt.Errorf("failed to upsert creature %s: %w", c.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCreature(row rowScanner) (*domain.Creature, error) {
	var c domain.Creature
	var passive, active, ultimate string
	var lineage sql.NullString
	err := row.Scan(&c.ID, &c.OwnerID, &c.TemplateID, &c.Name, &c.Family, &c.Element, &c.Rarity,
		&c.Stats.HP, &c.Stats.MaxHP, &c.Stats.Attack, &c.Stats.Defense, &c.Stats.Speed,
		&passive, &active, &ultimate, &lineage,
		&c.Wins, &c.Losses, &c.DamageDone, &c.CollectedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(passive), &c.Passive); err != nil {
		return nil, fmt.Errorf("failed to decode passive abilities: %w", err)
	}
	if err := json.Unmarshal([]byte(active), &c.Active); err != nil {
		return nil, fmt.Errorf("failed to decode active abilities: %w", err)
	}
	if err := json.Unmarshal([]byte(ultimate), &c.Ultimate); err != nil {
		return nil, fmt.Errorf("failed to decode ultimate abilities: %w", err)
	}
	if lineage.Valid {
		c.Lineage = &domain.Lineage{}
		if err := json.Unmarshal([]byte(lineage.String), c.Lineage); err != nil {
			return nil, fmt.Errorf("failed to decode lineage: %w", err)
		}
	}
	return &c, nil
}
