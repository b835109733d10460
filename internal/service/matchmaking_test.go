package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"creature-arena/internal/constants"
	"creature-arena/internal/domain"
	"creature-arena/internal/rating"
)

func (e *env) addRanking(t *testing.T, playerID string, ratingVal int) {
	t.Helper()
	rk := &domain.Ranking{
		PlayerID: playerID,
		Rating:   ratingVal,
		Division: rating.Division(ratingVal),
	}
	if err := e.rankings.Upsert(context.Background(), rk); err != nil {
		t.Fatalf("seed ranking %s: %v", playerID, err)
	}
	if err := e.index.Set(context.Background(), playerID, ratingVal); err != nil {
		t.Fatalf("index ranking %s: %v", playerID, err)
	}
}

func TestFindOpponentInitialisesRanking(t *testing.T) {
	e := newEnv(t)
	e.addRanking(t, "veteran", 1050)

	result, err := e.matchmaking.FindOpponent(context.Background(), "rookie")
	if err != nil {
		t.Fatalf("find opponent: %v", err)
	}
	if result.OpponentID != "veteran" {
		t.Fatalf("opponent %s, want veteran", result.OpponentID)
	}

	rk, err := e.rankings.Get(context.Background(), "rookie")
	if err != nil {
		t.Fatalf("rookie ranking not created: %v", err)
	}
	if rk.Rating != constants.DefaultRating {
		t.Fatalf("initial rating %d, want %d", rk.Rating, constants.DefaultRating)
	}
	if result.WinProbability < 1 || result.WinProbability > 99 {
		t.Fatalf("win probability %d out of sane range", result.WinProbability)
	}
}

func TestFindOpponentExpandsWindow(t *testing.T) {
	e := newEnv(t)
	e.addRanking(t, "me", constants.DefaultRating)
	// Outside the first +-200 window, inside +-400.
	e.addRanking(t, "distant", constants.DefaultRating+350)

	result, err := e.matchmaking.FindOpponent(context.Background(), "me")
	if err != nil {
		t.Fatalf("find opponent: %v", err)
	}
	if result.OpponentID != "distant" {
		t.Fatalf("opponent %s, want distant", result.OpponentID)
	}
}

func TestFindOpponentWholePoolFallback(t *testing.T) {
	e := newEnv(t)
	e.addRanking(t, "me", constants.DefaultRating)
	// Beyond every expansion window, reachable only via the whole-pool
	// scan of the index.
	e.addRanking(t, "outlier", constants.DefaultRating+constants.RatingWindowMax+500)

	result, err := e.matchmaking.FindOpponent(context.Background(), "me")
	if err != nil {
		t.Fatalf("find opponent: %v", err)
	}
	if result.OpponentID != "outlier" {
		t.Fatalf("opponent %s, want outlier", result.OpponentID)
	}
}

func TestFindOpponentWholePoolIndexLag(t *testing.T) {
	e := newEnv(t)
	e.addRanking(t, "me", constants.DefaultRating)

	// A ranking row the index never learned about still surfaces through
	// the rankings-table fallback.
	unindexed := &domain.Ranking{
		PlayerID: "ghost",
		Rating:   constants.DefaultRating + constants.RatingWindowMax + 500,
		Division: rating.Division(constants.DefaultRating),
	}
	if err := e.rankings.Upsert(context.Background(), unindexed); err != nil {
		t.Fatalf("seed ranking: %v", err)
	}

	result, err := e.matchmaking.FindOpponent(context.Background(), "me")
	if err != nil {
		t.Fatalf("find opponent: %v", err)
	}
	if result.OpponentID != "ghost" {
		t.Fatalf("opponent %s, want ghost", result.OpponentID)
	}
}

func TestFindOpponentEmptyPool(t *testing.T) {
	e := newEnv(t)

	_, err := e.matchmaking.FindOpponent(context.Background(), "loner")
	if !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("got err %v, want ErrEmptyPool", err)
	}
}

func TestFindOpponentSkipsBusyPlayers(t *testing.T) {
	e := newEnv(t)
	e.addRanking(t, "me", constants.DefaultRating)
	e.addRanking(t, "busy", constants.DefaultRating+50)

	now := time.Now()
	m := &domain.Match{
		ID:        "m1",
		PlayerA:   "busy",
		PlayerB:   "someone",
		Status:    domain.MatchPending,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
		UpdatedAt: now,
	}
	if err := e.matches.Upsert(context.Background(), m); err != nil {
		t.Fatalf("seed match: %v", err)
	}

	_, err := e.matchmaking.FindOpponent(context.Background(), "me")
	if !errors.Is(err, ErrNoOpponents) {
		t.Fatalf("got err %v, want ErrNoOpponents", err)
	}
}

func TestFindOpponentPrefersCloseRatings(t *testing.T) {
	e := newEnv(t)
	e.addRanking(t, "me", constants.DefaultRating)
	e.addRanking(t, "near", constants.DefaultRating+20)
	e.addRanking(t, "far", constants.DefaultRating+190)

	near, far := 0, 0
	for i := 0; i < 60; i++ {
		result, err := e.matchmaking.FindOpponent(context.Background(), "me")
		if err != nil {
			t.Fatalf("find opponent: %v", err)
		}
		switch result.OpponentID {
		case "near":
			near++
		case "far":
			far++
		default:
			t.Fatalf("unexpected opponent %s", result.OpponentID)
		}
	}
	if near <= far {
		t.Fatalf("weighting broken: near=%d far=%d", near, far)
	}
}
