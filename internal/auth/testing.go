package auth

import "context"

// WithUserID stores a user ID in ctx as Middleware would. Handlers tests use
// it to skip token minting.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
