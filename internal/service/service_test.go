package service

import (
	"context"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"creature-arena/internal/battle"
	"creature-arena/internal/config"
	"creature-arena/internal/database"
	"creature-arena/internal/domain"
	"creature-arena/internal/gacha"
	"creature-arena/internal/gamedata"
	"creature-arena/internal/leaderboard"
	"creature-arena/internal/repository"
	"creature-arena/internal/rng"
)

// env wires the full service stack against a throwaway sqlite file and an
// in-process redis.
type env struct {
	players     *repository.PlayerRepository
	creatures   *repository.CreatureRepository
	rankings    *repository.RankingRepository
	matches     *repository.MatchRepository
	index       *leaderboard.Index
	gd          *gamedata.GameData
	gacha       *GachaService
	fusion      *FusionService
	matchmaking *MatchmakingService
	match       *MatchService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := zerolog.Nop()

	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "arena.db")}
	db, err := database.New(cfg, logger)
	if err != nil {
		t.Fatalf("database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	index := leaderboard.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), logger)
	t.Cleanup(func() { _ = index.Close() })

	gd, err := gamedata.Load(cfg, logger)
	if err != nil {
		t.Fatalf("gamedata: %v", err)
	}

	source := rng.NewSeeded(1)
	e := &env{
		players:   repository.NewPlayerRepository(db, logger),
		creatures: repository.NewCreatureRepository(db, logger),
		rankings:  repository.NewRankingRepository(db, logger),
		matches:   repository.NewMatchRepository(db, logger),
		index:     index,
		gd:        gd,
	}
	battles := battle.NewEngine(gd)
	e.gacha = NewGachaService(gacha.NewEngine(gd, source), gd, e.players, e.creatures, source, logger)
	e.fusion = NewFusionService(gd, e.players, e.creatures, source, logger)
	e.matchmaking = NewMatchmakingService(e.rankings, e.matches, index, source, logger)
	e.match = NewMatchService(e.players, e.creatures, e.rankings, e.matches, index, battles, e.matchmaking, logger)
	return e
}

func (e *env) addPlayer(t *testing.T, id string, coins int) *domain.Player {
	t.Helper()
	p := &domain.Player{ID: id, Coins: coins}
	if err := e.players.Upsert(context.Background(), p); err != nil {
		t.Fatalf("seed player %s: %v", id, err)
	}
	return p
}

func (e *env) addCreature(t *testing.T, id, ownerID string, rarity domain.Rarity, speed int) *domain.Creature {
	t.Helper()
	c := &domain.Creature{
		ID:      id,
		OwnerID: ownerID,
		Name:    id,
		Element: domain.ElementFire,
		Rarity:  rarity,
		Stats:   domain.StatBlock{HP: 120, MaxHP: 120, Attack: 30, Defense: 10, Speed: speed},
		Active:  []string{"ab_strike"},
	}
	if err := e.creatures.Upsert(context.Background(), c); err != nil {
		t.Fatalf("seed creature %s: %v", id, err)
	}
	return c
}
