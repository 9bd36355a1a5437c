package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brandonr49/board-game-engine/internal/auth"
	"github.com/brandonr49/board-game-engine/internal/model"
	"github.com/brandonr49/board-game-engine/internal/service"
	"github.com/brandonr49/board-game-engine/pkg/battleline"
)

// MatchHandler serves the match endpoints.
type MatchHandler struct {
	svc *service.MatchService
}

// NewMatchHandler creates a MatchHandler.
func NewMatchHandler(svc *service.MatchService) *MatchHandler {
	return &MatchHandler{svc: svc}
}

// Routes mounts the match endpoints on r. Callers wrap r in auth.Middleware.
func (h *MatchHandler) Routes(r chi.Router) {
	r.Post("/matches", h.CreateMatch)
	r.Get("/matches", h.ListMatches)
	r.Get("/matches/{id}", h.GetMatch)
	r.Get("/matches/{id}/actions", h.ValidActions)
	r.Post("/matches/{id}/actions", h.SubmitAction)
	r.Get("/matches/{id}/events", h.Events)
}

type createMatchRequest struct {
	OpponentID    string `json:"opponent_id"`
	Bot           bool   `json:"bot"`
	BotDifficulty string `json:"bot_difficulty"`
}

// CreateMatch handles POST /api/v1/matches.
func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	m, err := h.svc.CreateMatch(r.Context(), userID, service.Opponent{
		UserID:        req.OpponentID,
		Bot:           req.Bot,
		BotDifficulty: req.BotDifficulty,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// ListMatches handles GET /api/v1/matches.
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.svc.ListMatches(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if matches == nil {
		matches = []model.Match{}
	}
	writeJSON(w, http.StatusOK, matches)
}

// GetMatch handles GET /api/v1/matches/{id}. The state is the caller's view.
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.View(r.Context(), chi.URLParam(r, "id"), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ValidActions handles GET /api/v1/matches/{id}/actions.
func (h *MatchHandler) ValidActions(w http.ResponseWriter, r *http.Request) {
	actions, err := h.svc.ValidActions(r.Context(), chi.URLParam(r, "id"), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if actions == nil {
		actions = []battleline.ActionInput{}
	}
	writeJSON(w, http.StatusOK, actions)
}

// SubmitAction handles POST /api/v1/matches/{id}/actions.
func (h *MatchHandler) SubmitAction(w http.ResponseWriter, r *http.Request) {
	var in battleline.ActionInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.SubmitAction(r.Context(), chi.URLParam(r, "id"), auth.UserIDFromContext(r.Context()), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Events handles GET /api/v1/matches/{id}/events.
func (h *MatchHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.Events(r.Context(), chi.URLParam(r, "id"), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if events == nil {
		events = []model.MatchEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}
