package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"xiangqi/internal/engine"
	core "xiangqi/internal/game"
	"xiangqi/internal/notation"
	servergame "xiangqi/internal/server/game"
	"xiangqi/internal/xiangqi"
)

const (
	defaultUndoMoves = 2
	maxUndoMoves     = 10
)

var errBadRequest = errors.New("bad request")

// Handler 实现 /api/* 各接口，所有对局状态都经过 Manager。
type Handler struct {
	mgr *servergame.Manager
	hub *Hub
	log zerolog.Logger
}

func NewHandler(mgr *servergame.Manager, hub *Hub, log zerolog.Logger) *Handler {
	return &Handler{mgr: mgr, hub: hub, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor 把领域错误映射到 HTTP 状态码。
func statusFor(err error) int {
	switch {
	case errors.Is(err, servergame.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, core.ErrIllegalMove),
		errors.Is(err, core.ErrGameOver),
		errors.Is(err, core.ErrInsufficientHistory),
		errors.Is(err, core.ErrInvalidUndoCount),
		errors.Is(err, servergame.ErrInvalidDifficulty),
		errors.Is(err, xiangqi.ErrInvalidSquare),
		errors.Is(err, notation.ErrInvalidMove),
		errors.Is(err, engine.ErrNoLegalMoves):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		msg = "internal error"
	}
	writeJSON(w, status, ErrorResponse{Success: false, Error: msg})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: bad json: %v", errBadRequest, err)
	}
	return nil
}

func positionToSquare(p PositionDTO) (xiangqi.Square, error) {
	return xiangqi.NewSquare(p.Row, p.Col)
}

func (h *Handler) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req NewGameRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	side, ok := sideFromString(req.PlayerColor)
	if !ok {
		h.fail(w, r, fmt.Errorf("%w: player_color must be red or black", errBadRequest))
		return
	}
	s := h.mgr.NewGame(side)
	writeJSON(w, http.StatusOK, NewGameResponse{SessionID: s.ID, GameState: stateToDTO(s)})
}

func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	from, err := positionToSquare(req.FromPos)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	to, err := positionToSquare(req.ToPos)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.mgr.Move(req.SessionID, from, to)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MoveResponse{Success: true, GameState: stateToDTO(s)})
}

func (h *Handler) handleUndo(w http.ResponseWriter, r *http.Request) {
	var req UndoRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	n := defaultUndoMoves
	if req.Moves != nil {
		n = *req.Moves
	}
	if n < 1 || n > maxUndoMoves {
		h.fail(w, r, fmt.Errorf("%w: moves must be between 1 and %d", errBadRequest, maxUndoMoves))
		return
	}
	s, err := h.mgr.Undo(req.SessionID, n)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MoveResponse{Success: true, GameState: stateToDTO(s)})
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, ok := h.mgr.Get(id)
	if !ok {
		h.fail(w, r, servergame.ErrSessionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, stateToDTO(s))
}

func (h *Handler) handleWatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.hub.serveWatch(w, r, func() (*core.Session, bool) { return h.mgr.Get(id) })
}

func (h *Handler) handleAIMove(w http.ResponseWriter, r *http.Request) {
	var req AIMoveRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.mgr.AIMove(r.Context(), req.SessionID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	mv := moveToDTO(res.Move)
	writeJSON(w, http.StatusOK, AIMoveResponse{
		Success:     true,
		Move:        &mv,
		Explanation: explain(res.Move, res.Search, res.Evaluation),
		Evaluation:  res.Evaluation,
		Score:       res.Search.Score,
		Depth:       res.Search.Depth,
		Nodes:       res.Search.Nodes,
		TimeMs:      res.Search.TimeUsed.Milliseconds(),
		GameState:   stateToDTO(res.Session),
	})
}

func (h *Handler) handleGetDifficulty(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, DifficultyResponse{Difficulty: h.mgr.Difficulty()})
}

// handleSetDifficulty 接受 ?difficulty=4 或 JSON {"difficulty":4}。
func (h *Handler) handleSetDifficulty(w http.ResponseWriter, r *http.Request) {
	var d int
	if q := r.URL.Query().Get("difficulty"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil {
			h.fail(w, r, fmt.Errorf("%w: difficulty %q", errBadRequest, q))
			return
		}
		d = v
	} else {
		var req DifficultyRequest
		if err := decode(r, &req); err != nil {
			h.fail(w, r, err)
			return
		}
		d = req.Difficulty
	}
	if err := h.mgr.SetDifficulty(d); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DifficultyResponse{
		Message:    fmt.Sprintf("difficulty set to %d", d),
		Difficulty: d,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
