package rating

import (
	"math"
	"testing"

	"creature-arena/internal/domain"
)

func TestDeltaEqualOpponents(t *testing.T) {
	if d := Delta(1000, 1000, ScoreWin); d != 16 {
		t.Fatalf("win delta at equal ratings: got %d, want 16", d)
	}
	if d := Delta(1000, 1000, ScoreLoss); d != -16 {
		t.Fatalf("loss delta at equal ratings: got %d, want -16", d)
	}
	if d := Delta(1000, 1000, ScoreDraw); d != 0 {
		t.Fatalf("draw delta at equal ratings: got %d, want 0", d)
	}
}

func TestDeltaFavorsUnderdog(t *testing.T) {
	underdog := Delta(1000, 1400, ScoreWin)
	favorite := Delta(1400, 1000, ScoreWin)
	if underdog <= favorite {
		t.Fatalf("underdog win should pay more: underdog=%d favorite=%d", underdog, favorite)
	}
}

func TestExpectedScoreComplementary(t *testing.T) {
	a, b := 1100, 1350
	sum := ExpectedScore(a, b) + ExpectedScore(b, a)
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("expectations should sum to 1, got %v", sum)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(-5); got != 0 {
		t.Fatalf("Clamp(-5) = %d, want 0", got)
	}
	if got := Clamp(1234); got != 1234 {
		t.Fatalf("Clamp(1234) = %d, want 1234", got)
	}
}

func TestDivisionBoundaries(t *testing.T) {
	cases := []struct {
		rating int
		want   domain.Division
	}{
		{0, domain.DivisionBronze},
		{1199, domain.DivisionBronze},
		{1200, domain.DivisionSilver},
		{1499, domain.DivisionSilver},
		{1500, domain.DivisionGold},
		{1800, domain.DivisionPlatinum},
		{2100, domain.DivisionDiamond},
		{2399, domain.DivisionDiamond},
		{2400, domain.DivisionMaster},
		{9000, domain.DivisionMaster},
	}
	for _, c := range cases {
		if got := Division(c.rating); got != c.want {
			t.Fatalf("Division(%d) = %s, want %s", c.rating, got, c.want)
		}
	}
}

func TestDivisionMultiplierMonotonic(t *testing.T) {
	order := []domain.Division{
		domain.DivisionBronze,
		domain.DivisionSilver,
		domain.DivisionGold,
		domain.DivisionPlatinum,
		domain.DivisionDiamond,
		domain.DivisionMaster,
	}
	prev := 0.0
	for _, d := range order {
		m := DivisionMultiplier(d)
		if m <= prev {
			t.Fatalf("multiplier for %s (%v) not above previous (%v)", d, m, prev)
		}
		prev = m
	}
}
