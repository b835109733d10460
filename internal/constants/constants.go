package constants

import "time"

const (
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second
	RedisTimeout    = 2 * time.Second
)

const (
	ShutdownTimeout = 5 * time.Second
)

// Gacha.
const (
	HardPity         = 90
	SoftPityInterval = 10
	GachaRollCost    = 100 // coins per roll
	RollEssenceGrant = 5   // essence of the landed tier granted per roll
	MaxBatchRolls    = 10
)

// Fusion.
const (
	FusionBonusFraction  = 0.15 // bonus drawn in [0, fraction*avg] per stat
	NotableBonusFraction = 0.10 // bonus above this fraction of avg counts as a mutation
	FusionEssenceCost    = 25   // essence of the child's tier
	CatalystBiasFraction = 0.05 // flat boost a catalyst element bias adds to one stat
)

// Battle.
const (
	BaseEnergy      = 50
	EnergyPerTurn   = 10
	MaxEnergy       = 100
	CritChance      = 0.10
	CritMultiplier  = 1.5
	MinDamage       = 1
	MaxBattleRounds = 100 // hard stop against stalemates
	TeamSizeMin     = 1
	TeamSizeMax     = 4
)

// Rating.
const (
	KFactor       = 32
	DefaultRating = 1000
)

// Matchmaking.
const (
	RatingWindowStep = 200
	RatingWindowMax  = 1000
	WindowDecay      = 200.0 // candidate weight = exp(-|diff|/WindowDecay)
)

// Match lifecycle.
const (
	MatchTTL        = 24 * time.Hour
	WinnerBaseCoins = 100
	LoserBaseCoins  = 25
)
