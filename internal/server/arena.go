package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"creature-arena/internal/battle"
	"creature-arena/internal/domain"
	"creature-arena/internal/fusion"
	"creature-arena/internal/repository"
	"creature-arena/internal/service"
)

// ArenaServer exposes the game operations over JSON/HTTP.
type ArenaServer struct {
	gachaSvc       *service.GachaService
	fusionSvc      *service.FusionService
	matchmakingSvc *service.MatchmakingService
	matchSvc       *service.MatchService
	battleEngine   *battle.Engine
}

func NewArenaServer(
	gachaSvc *service.GachaService,
	fusionSvc *service.FusionService,
	matchmakingSvc *service.MatchmakingService,
	matchSvc *service.MatchService,
	battleEngine *battle.Engine,
) *ArenaServer {
	return &ArenaServer{
		gachaSvc:       gachaSvc,
		fusionSvc:      fusionSvc,
		matchmakingSvc: matchmakingSvc,
		matchSvc:       matchSvc,
		battleEngine:   battleEngine,
	}
}

// Routes registers every handler on mux.
func (s *ArenaServer) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /gacha/roll", s.handleGachaRoll)
	mux.HandleFunc("POST /gacha/roll-batch", s.handleGachaRollBatch)
	mux.HandleFunc("POST /fusion/fuse", s.handleFuse)
	mux.HandleFunc("GET /matchmaking/find-opponent", s.handleFindOpponent)
	mux.HandleFunc("POST /matches", s.handleCreateMatch)
	mux.HandleFunc("POST /matches/complete", s.handleCompleteMatch)
	mux.HandleFunc("POST /battles/resolve-turn", s.handleResolveTurn)
}

type gachaRollRequest struct {
	PlayerID string `json:"player_id"`
}

func (s *ArenaServer) handleGachaRoll(w http.ResponseWriter, r *http.Request) {
	var req gachaRollRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := s.gachaSvc.RollGacha(r.Context(), req.PlayerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type gachaBatchRequest struct {
	PlayerID string `json:"player_id"`
	Count    int    `json:"count"`
}

func (s *ArenaServer) handleGachaRollBatch(w http.ResponseWriter, r *http.Request) {
	var req gachaBatchRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := s.gachaSvc.RollGachaBatch(r.Context(), req.PlayerID, req.Count)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type fuseRequest struct {
	PlayerID  string `json:"player_id"`
	ParentAID string `json:"parent_a_id"`
	ParentBID string `json:"parent_b_id"`
	CatalystA string `json:"catalyst_a_id"`
	CatalystB string `json:"catalyst_b_id"`
}

func (s *ArenaServer) handleFuse(w http.ResponseWriter, r *http.Request) {
	var req fuseRequest
	if !decode(w, r, &req) {
		return
	}
	child, err := s.fusionSvc.FuseCreatures(r.Context(), req.PlayerID, req.ParentAID, req.ParentBID, req.CatalystA, req.CatalystB)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, child)
}

func (s *ArenaServer) handleFindOpponent(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player_id")
	if playerID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("player_id is required"))
		return
	}
	result, err := s.matchmakingSvc.FindOpponent(r.Context(), playerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type createMatchRequest struct {
	PlayerID   string   `json:"player_id"`
	OpponentID string   `json:"opponent_id"`
	TeamIDs    []string `json:"team_ids"`
}

func (s *ArenaServer) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := s.matchSvc.CreateAsyncMatch(r.Context(), req.PlayerID, req.OpponentID, req.TeamIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

type completeMatchRequest struct {
	MatchID  string `json:"match_id"`
	PlayerID string `json:"player_id"`
	WinnerID string `json:"winner_id,omitempty"`
}

func (s *ArenaServer) handleCompleteMatch(w http.ResponseWriter, r *http.Request) {
	var req completeMatchRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := s.matchSvc.CompleteMatch(r.Context(), req.MatchID, req.PlayerID, req.WinnerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type resolveTurnRequest struct {
	Battle *domain.Battle `json:"battle"`
}

// handleResolveTurn advances a caller-held battle state by one action.
// The endpoint is stateless: the caller round-trips the full battle.
func (s *ArenaServer) handleResolveTurn(w http.ResponseWriter, r *http.Request) {
	var req resolveTurnRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Battle == nil || len(req.Battle.Combatants) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("battle state is required"))
		return
	}
	if err := s.battleEngine.ResolveTurn(req.Battle); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req.Battle)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// writeError maps the service error taxonomy onto HTTP statuses:
// validation 400, state conflicts 409, missing rows 404, exhausted
// pools 503, anything else 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInsufficientCoins),
		errors.Is(err, service.ErrInsufficientEssence),
		errors.Is(err, service.ErrInvalidBatchCount),
		errors.Is(err, service.ErrTeamSize),
		errors.Is(err, service.ErrNotOwner),
		errors.Is(err, service.ErrUnknownCatalyst),
		errors.Is(err, service.ErrSelfMatch),
		errors.Is(err, service.ErrOpponentNoTeam),
		errors.Is(err, fusion.ErrSameCreature),
		errors.Is(err, battle.ErrNoCombatants),
		errors.Is(err, battle.ErrInvalidState):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrMatchCompleted),
		errors.Is(err, service.ErrMatchExpired),
		errors.Is(err, service.ErrNotParticipant),
		errors.Is(err, battle.ErrBattleComplete):
		status = http.StatusConflict
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrNoTemplates),
		errors.Is(err, service.ErrEmptyPool),
		errors.Is(err, service.ErrNoOpponents):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, status, errorBody("internal error"))
		return
	}
	writeJSON(w, status, errorBody(err.Error()))
}
