package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"creature-arena/internal/battle"
	"creature-arena/internal/domain"
	"creature-arena/internal/gamedata"
)

const testTables = `
drop_rates:
  legendary: 0.01
  epic: 0.05
  rare: 0.14
  uncommon: 0.30
  common: 0.50
abilities:
  - id: ab_claw
    name: Claw
    kind: active
    cost: 0
    cooldown: 0
    effects:
      - kind: damage
        power: 12
`

func battleOnlyServer(t *testing.T) (*ArenaServer, *battle.Engine) {
	t.Helper()
	gd, err := gamedata.Parse([]byte(testTables))
	if err != nil {
		t.Fatalf("parse tables: %v", err)
	}
	engine := battle.NewEngine(gd)
	return NewArenaServer(nil, nil, nil, nil, engine), engine
}

func postTurn(t *testing.T, srv *ArenaServer, b *domain.Battle) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]any{"battle": b})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/battles/resolve-turn", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.handleResolveTurn(rec, req)
	return rec
}

func TestResolveTurnAdvancesBattle(t *testing.T) {
	srv, engine := battleOnlyServer(t)

	c := func(id string, team int) *domain.Creature {
		return &domain.Creature{
			ID:     id,
			Name:   id,
			Stats:  domain.StatBlock{HP: 100, MaxHP: 100, Attack: 20, Defense: 5, Speed: 10 + team},
			Active: []string{"ab_claw"},
		}
	}
	b, err := engine.New("b1", []*domain.Creature{c("a", 0)}, []*domain.Creature{c("b", 1)}, nil, 42)
	if err != nil {
		t.Fatalf("new battle: %v", err)
	}

	rec := postTurn(t, srv, b)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}

	var out domain.Battle
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Turn != 1 || out.Phase != domain.BattleInProgress {
		t.Fatalf("turn not advanced: turn=%d phase=%s", out.Turn, out.Phase)
	}
	if len(out.Log) == 0 {
		t.Fatal("no log entry for the resolved action")
	}
}

func TestResolveTurnCompleteConflicts(t *testing.T) {
	srv, _ := battleOnlyServer(t)

	b := &domain.Battle{
		ID:         "done",
		IsComplete: true,
		Phase:      domain.BattleComplete,
		Winner:     domain.WinnerTeamA,
		Combatants: []domain.Combatant{{CreatureID: "a"}},
		Order:      []int{0},
	}
	rec := postTurn(t, srv, b)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409", rec.Code)
	}
}

func TestResolveTurnInconsistentStateRejected(t *testing.T) {
	srv, _ := battleOnlyServer(t)

	combatants := []domain.Combatant{
		{CreatureID: "a", HP: 50, MaxHP: 50, Team: domain.TeamA},
		{CreatureID: "b", HP: 50, MaxHP: 50, Team: domain.TeamB},
	}
	tampered := []*domain.Battle{
		{ID: "no-order", Combatants: combatants},
		{ID: "bad-index", Combatants: combatants, Order: []int{0, 7}},
		{ID: "bad-cursor", Combatants: combatants, Order: []int{0, 1}, Cursor: 5},
	}
	for _, b := range tampered {
		rec := postTurn(t, srv, b)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status %d, want 400", b.ID, rec.Code)
		}
	}
}

func TestResolveTurnMissingState(t *testing.T) {
	srv, _ := battleOnlyServer(t)

	req := httptest.NewRequest(http.MethodPost, "/battles/resolve-turn", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	srv.handleResolveTurn(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}
