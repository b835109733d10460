// Package rating holds the pure ELO-style math shared by matchmaking and
// the match lifecycle service.
package rating

import (
	"math"

	"creature-arena/internal/constants"
	"creature-arena/internal/domain"
)

// Score values fed into Delta.
const (
	ScoreWin  = 1.0
	ScoreDraw = 0.5
	ScoreLoss = 0.0
)

// ExpectedScore is the logistic ELO expectation for a against b.
func ExpectedScore(a, b int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(b-a)/400.0))
}

// Delta returns the signed rating change for a player at rating against an
// opponent at opp, given the achieved score (1 win, 0.5 draw, 0 loss).
func Delta(rating, opp int, score float64) int {
	return int(math.Round(constants.KFactor * (score - ExpectedScore(rating, opp))))
}

// WinProbabilityPercent rounds the expectation to a whole percentage.
func WinProbabilityPercent(rating, opp int) int {
	return int(math.Round(ExpectedScore(rating, opp) * 100))
}

// Clamp keeps a post-match rating from going negative.
func Clamp(rating int) int {
	if rating < 0 {
		return 0
	}
	return rating
}

type divisionThreshold struct {
	min      int
	division domain.Division
}

// Ascending; a rating maps to the highest threshold it clears.
var divisionThresholds = []divisionThreshold{
	{0, domain.DivisionBronze},
	{1200, domain.DivisionSilver},
	{1500, domain.DivisionGold},
	{1800, domain.DivisionPlatinum},
	{2100, domain.DivisionDiamond},
	{2400, domain.DivisionMaster},
}

// Division derives the discrete tier from a rating. Monotonic
// non-decreasing in rating.
func Division(rating int) domain.Division {
	d := domain.DivisionBronze
	for _, t := range divisionThresholds {
		if rating >= t.min {
			d = t.division
		}
	}
	return d
}

// DivisionMultiplier scales match rewards by division.
func DivisionMultiplier(d domain.Division) float64 {
	switch d {
	case domain.DivisionBronze:
		return 1.0
	case domain.DivisionSilver:
		return 1.1
	case domain.DivisionGold:
		return 1.25
	case domain.DivisionPlatinum:
		return 1.5
	case domain.DivisionDiamond:
		return 1.75
	case domain.DivisionMaster:
		return 2.0
	default:
		return 1.0
	}
}
