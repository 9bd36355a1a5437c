package handler

import (
	"net/http"
	"strings"

	"github.com/brandonr49/board-game-engine/internal/auth"
	"github.com/brandonr49/board-game-engine/internal/logger"
	"github.com/brandonr49/board-game-engine/internal/repository"
)

const maxDisplayName = 40

// AuthHandler issues and refreshes tokens and serves the caller's profile.
type AuthHandler struct {
	jwtMgr   *auth.JWTManager
	userRepo repository.UserRepository
	dev      bool
}

// NewAuthHandler creates an AuthHandler. DevLogin only answers when dev is set.
func NewAuthHandler(jwtMgr *auth.JWTManager, userRepo repository.UserRepository, dev bool) *AuthHandler {
	return &AuthHandler{jwtMgr: jwtMgr, userRepo: userRepo, dev: dev}
}

// DevLogin handles POST /api/v1/auth/dev-login. It creates a fresh user with
// the given display name and returns a token pair for it.
func (h *AuthHandler) DevLogin(w http.ResponseWriter, r *http.Request) {
	if !h.dev {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var req struct {
		DisplayName string `json:"display_name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" || len(name) > maxDisplayName {
		writeError(w, http.StatusBadRequest, "display_name must be 1-40 characters")
		return
	}

	user, err := h.userRepo.Create(r.Context(), name)
	if err != nil {
		l := logger.ForRequest(r.Context())
		l.Error().Err(err).Str("name", name).Msg("Failed to create dev user")
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	tokens, err := h.jwtMgr.GenerateTokenPair(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user, "tokens": tokens})
}

// RefreshToken exchanges a refresh token for a new token pair.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.jwtMgr.Refresh(req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}

// Me handles GET /api/v1/users/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	user, err := h.userRepo.FindByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
