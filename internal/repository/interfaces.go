package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/brandonr49/board-game-engine/internal/model"
)

// UserRepository defines operations on user records.
type UserRepository interface {
	Create(ctx context.Context, displayName string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// MatchRepository defines durable storage for matches, their seats, the
// accepted-action log and the latest state snapshot.
type MatchRepository interface {
	// Create inserts the match, its players and the initial snapshot in one transaction.
	Create(ctx context.Context, m *model.Match, state json.RawMessage) (*model.Match, error)
	FindByID(ctx context.Context, id string) (*model.Match, error)
	ListActive(ctx context.Context) ([]model.Match, error)
	ListByUser(ctx context.Context, userID string) ([]model.Match, error)
	// Commit stores an accepted action atomically: the new snapshot, the
	// event (its Seq, ID and CreatedAt are filled in) and, when outcome is
	// non-nil, the finished status. On error nothing is written.
	Commit(ctx context.Context, matchID string, state json.RawMessage, e *model.MatchEvent, outcome *model.MatchOutcome) error
	LatestSnapshot(ctx context.Context, matchID string) (json.RawMessage, error)
	ListEvents(ctx context.Context, matchID string) ([]model.MatchEvent, error)
}

// MatchCache defines the live state store and a cross-process lock per match.
type MatchCache interface {
	SetMatchState(ctx context.Context, matchID string, state json.RawMessage, ttl time.Duration) error
	GetMatchState(ctx context.Context, matchID string) (json.RawMessage, error)
	DeleteMatchState(ctx context.Context, matchID string) error
	AcquireLock(ctx context.Context, matchID, owner string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, matchID, owner string) error
}
