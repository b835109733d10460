package fx

import (
	"creature-arena/internal/battle"
	"creature-arena/internal/config"
	"creature-arena/internal/database"
	"creature-arena/internal/gacha"
	"creature-arena/internal/gamedata"
	"creature-arena/internal/leaderboard"
	"creature-arena/internal/logger"
	"creature-arena/internal/repository"
	"creature-arena/internal/rng"
	"creature-arena/internal/server"
	"creature-arena/internal/service"

	"go.uber.org/fx"
)

// ProvideRNG wires the process-wide random source. A non-zero RNG_SEED
// makes the whole service deterministic for replay debugging.
func ProvideRNG(cfg *config.Config) rng.Source {
	if cfg.RNGSeed != 0 {
		return rng.NewSeeded(cfg.RNGSeed)
	}
	return rng.NewDefault()
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(gamedata.Load),
	fx.Provide(ProvideRNG),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewCreatureRepository),
	fx.Provide(repository.NewRankingRepository),
	fx.Provide(repository.NewMatchRepository),
	// redis rating index
	fx.Provide(leaderboard.New),
	// engines
	fx.Provide(gacha.NewEngine),
	fx.Provide(battle.NewEngine),
	// svc
	fx.Provide(service.NewGachaService),
	fx.Provide(service.NewFusionService),
	fx.Provide(service.NewMatchmakingService),
	fx.Provide(service.NewMatchService),
	// server
	fx.Provide(server.NewArenaServer),
)
