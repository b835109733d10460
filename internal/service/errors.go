package service

import "errors"

// Validation errors: reported synchronously, no state mutated.
var (
	ErrInsufficientCoins   = errors.New("insufficient coin balance")
	ErrInsufficientEssence = errors.New("insufficient essence balance")
	ErrInvalidBatchCount   = errors.New("batch count out of range")
	ErrTeamSize            = errors.New("team size must be between 1 and 4")
	ErrNotOwner            = errors.New("creature is not owned by player")
	ErrUnknownCatalyst     = errors.New("unknown catalyst")
	ErrSelfMatch           = errors.New("cannot match against yourself")
	ErrOpponentNoTeam      = errors.New("opponent has no creatures to field")
)

// State-conflict errors: reported synchronously, no state mutated.
var (
	ErrMatchCompleted = errors.New("match is already completed")
	ErrMatchExpired   = errors.New("match is expired")
	ErrNotParticipant = errors.New("winner is not a participant of the match")
)

// Resource-exhaustion errors: fatal for the request, never silently
// retried here.
var (
	ErrNoTemplates = errors.New("no creature templates available at any rarity tier")
	ErrEmptyPool   = errors.New("ranking pool has no other players")
	ErrNoOpponents = errors.New("no eligible opponents available")
)
