package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/brandonr49/board-game-engine/internal/logger"
	"github.com/brandonr49/board-game-engine/internal/service"
	"github.com/brandonr49/board-game-engine/pkg/battleline"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads and decodes JSON from a request body.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// statusFor maps service and engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrMatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotInMatch), errors.Is(err, battleline.ErrUnknownPlayer):
		return http.StatusForbidden
	case errors.Is(err, battleline.ErrNotYourTurn),
		errors.Is(err, battleline.ErrGameOver),
		errors.Is(err, battleline.ErrWrongPhase),
		errors.Is(err, service.ErrMatchBusy):
		return http.StatusConflict
	case errors.Is(err, battleline.ErrInvalidAction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidPlayers):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeServiceError writes err with its mapped status. Internal errors are
// logged and hidden from the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		l := logger.ForRequest(r.Context())
		l.Error().Err(err).Msg("Request failed")
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
