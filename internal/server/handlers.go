package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/revrebgame/revreb-server-go/internal/game"
	"github.com/revrebgame/revreb-server-go/internal/game/card"
	"github.com/revrebgame/revreb-server-go/internal/game/rules"
	"github.com/revrebgame/revreb-server-go/internal/game/state"
)

// envelope is the uniform response body. Error responses still carry the
// committed state when one exists, so clients can render the rejection event.
type envelope struct {
	Success bool             `json:"success"`
	State   *state.GameState `json:"state,omitempty"`
	Error   *errorBody       `json:"error,omitempty"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type actionRequest struct {
	PlayerID        string   `json:"playerId"`
	Type            string   `json:"type"`
	HandIndex       int      `json:"handIndex"`
	Zone            string   `json:"zone"`
	FaceDown        bool     `json:"faceDown"`
	SelectionID     string   `json:"selectionId"`
	SelectedCardIDs []string `json:"selectedCardIds"`
}

type ackRequest struct {
	EventIDs []int64 `json:"eventIds"`
}

type createGameRequest struct {
	GameID  string `json:"gameId"`
	Seed    int64  `json:"seed"`
	Players []struct {
		ID      string   `json:"id"`
		Name    string   `json:"name"`
		Deck    []string `json:"deck"`
		Leaders []string `json:"leaders"`
	} `json:"players"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "malformed request body")
		return
	}
	if req.GameID == "" || len(req.Players) != 2 {
		writeError(w, http.StatusBadRequest, "BadRequest", "gameId and exactly two players are required")
		return
	}
	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	setups := make([]game.PlayerSetup, 2)
	for i, p := range req.Players {
		setups[i] = game.PlayerSetup{ID: p.ID, Name: p.Name, Deck: p.Deck, Leaders: p.Leaders}
	}
	st, err := s.engine.NewGame(r.Context(), req.GameID, setups[0], setups[1], seed)
	if err != nil {
		s.writeEngineError(w, nil, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, State: st})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "malformed request body")
		return
	}
	if req.PlayerID == "" || req.Type == "" {
		writeError(w, http.StatusBadRequest, "BadRequest", "playerId and type are required")
		return
	}

	a := state.Action{
		Type:            state.ActionType(req.Type),
		HandIndex:       req.HandIndex,
		Zone:            card.Zone(req.Zone),
		FaceDown:        req.FaceDown,
		SelectionID:     req.SelectionID,
		SelectedCardIDs: req.SelectedCardIDs,
	}
	st, err := s.engine.ProcessAction(r.Context(), gameID, req.PlayerID, a)
	if err != nil {
		s.writeEngineError(w, st, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, State: st})
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	var req ackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "malformed request body")
		return
	}
	st, err := s.engine.AcknowledgeEvents(r.Context(), gameID, req.EventIDs)
	if err != nil {
		s.writeEngineError(w, nil, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, State: st})
}

func (s *Server) handleQueryState(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		writeError(w, http.StatusBadRequest, "BadRequest", "playerId query parameter is required")
		return
	}
	st, err := s.engine.QueryState(r.Context(), gameID, playerID)
	if err != nil {
		s.writeEngineError(w, nil, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, State: st})
}

func (s *Server) handleInject(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	var st state.GameState
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "malformed state document")
		return
	}
	out, err := s.engine.InjectState(r.Context(), gameID, &st)
	if err != nil {
		s.writeEngineError(w, nil, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, State: out})
}

// writeEngineError maps engine errors onto HTTP statuses. Validation
// failures return the state document that now carries the error event.
func (s *Server) writeEngineError(w http.ResponseWriter, st *state.GameState, err error) {
	var f *rules.Failure
	if errors.As(err, &f) {
		status := http.StatusUnprocessableEntity
		switch f.Kind {
		case rules.FailNotYourTurn, rules.FailNoPendingSelection:
			status = http.StatusConflict
		}
		writeJSON(w, status, envelope{
			Success: false,
			State:   st,
			Error:   &errorBody{Kind: string(f.Kind), Message: f.Message},
		})
		return
	}
	switch {
	case errors.Is(err, game.ErrUnknownGame), errors.Is(err, card.ErrUnknownCard):
		writeError(w, http.StatusNotFound, "NotFound", err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, envelope{
		Success: false,
		Error:   &errorBody{Kind: kind, Message: message},
	})
}
