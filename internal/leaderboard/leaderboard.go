// Package leaderboard maintains the redis sorted-set index of player
// ratings. The sqlite rankings table stays the source of truth; the index
// only backs the matchmaking rating-window scan.
package leaderboard

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"creature-arena/internal/config"
	"creature-arena/internal/constants"
)

const ratingsKey = "arena:ratings"

type Index struct {
	rdb    *redis.Client
	logger zerolog.Logger
}

func New(cfg *config.Config, logger zerolog.Logger) (*Index, error) {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	ctx, cancel := context.WithTimeout(context.Background(), constants.RedisTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("rating index connected")
	return &Index{rdb: rdb, logger: logger}, nil
}

// NewWithClient wraps an existing client; used by tests with miniredis.
func NewWithClient(rdb *redis.Client, logger zerolog.Logger) *Index {
	return &Index{rdb: rdb, logger: logger}
}

func (i *Index) Close() error { return i.rdb.Close() }

// Set writes a player's rating into the sorted set.
func (i *Index) Set(ctx context.Context, playerID string, rating int) error {
	err := i.rdb.ZAdd(ctx, ratingsKey, redis.Z{
		Score:  float64(rating),
		Member: playerID,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to index rating for %s: %w", playerID, err)
	}
	return nil
}

// Range returns the player ids with rating inside [min, max], excluding
// one id.
func (i *Index) Range(ctx context.Context, min, max int, excludeID string) ([]string, error) {
	ids, err := i.rdb.ZRangeByScore(ctx, ratingsKey, &redis.ZRangeBy{
		Min: strconv.Itoa(min),
		Max: strconv.Itoa(max),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to scan rating window: %w", err)
	}
	return exclude(ids, excludeID), nil
}

// All returns every indexed player id except one.
func (i *Index) All(ctx context.Context, excludeID string) ([]string, error) {
	ids, err := i.rdb.ZRange(ctx, ratingsKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to scan rating index: %w", err)
	}
	return exclude(ids, excludeID), nil
}

func exclude(ids []string, excludeID string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != excludeID {
			out = append(out, id)
		}
	}
	return out
}
