package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/brandonr49/board-game-engine/internal/logger"
)

type contextKey string

const userIDKey contextKey = "user_id"

// TokenFromRequest returns the bearer token from the Authorization header,
// falling back to the ?token= query parameter used by WebSocket clients.
func TokenFromRequest(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			return "", ErrInvalidToken
		}
		return token, nil
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}
	return "", ErrMissingToken
}

// Middleware returns an HTTP middleware that validates access tokens and
// stores the user ID in the request context.
func Middleware(jwtMgr *JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := TokenFromRequest(r)
			if err != nil {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusUnauthorized)
				return
			}

			claims, err := jwtMgr.ValidateToken(token, TokenAccess)
			if err != nil {
				l := logger.ForRequest(r.Context())
				l.Debug().Err(err).Msg("Rejected token")
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated user ID from the request context.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
