package model

import (
	"encoding/json"
	"time"
)

// User is a registered player.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Match status values.
const (
	MatchActive   = "active"
	MatchFinished = "finished"
)

// Winner value recorded for a drawn match.
const WinnerDraw = "draw"

// Match is the durable record of one Battle Line game between two seats.
type Match struct {
	ID         string        `json:"id"`
	CreatorID  string        `json:"creator_id"`
	Status     string        `json:"status"`
	Seed       int64         `json:"seed"`
	Winner     string        `json:"winner,omitempty"`
	WinKind    string        `json:"win_kind,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Players    []MatchPlayer `json:"players,omitempty"`
}

// PlayerAt returns the player sitting in the given seat, or nil.
func (m *Match) PlayerAt(seat int) *MatchPlayer {
	for i := range m.Players {
		if m.Players[i].Seat == seat {
			return &m.Players[i]
		}
	}
	return nil
}

// Player returns the seat record for a user, or nil when they are not seated.
func (m *Match) Player(userID string) *MatchPlayer {
	for i := range m.Players {
		if m.Players[i].UserID == userID {
			return &m.Players[i]
		}
	}
	return nil
}

// MatchPlayer seats a user (or a bot) in a match.
type MatchPlayer struct {
	MatchID       string `json:"match_id"`
	UserID        string `json:"user_id"`
	DisplayName   string `json:"display_name"`
	Seat          int    `json:"seat"`
	IsBot         bool   `json:"is_bot"`
	BotDifficulty string `json:"bot_difficulty,omitempty"`
}

// MatchEvent is one accepted action with the narration it produced.
type MatchEvent struct {
	ID        int64           `json:"id"`
	MatchID   string          `json:"match_id"`
	Seq       int             `json:"seq"`
	UserID    string          `json:"user_id"`
	Kind      string          `json:"kind"`
	Action    json.RawMessage `json:"action"`
	Log       []string        `json:"log"`
	CreatedAt time.Time       `json:"created_at"`
}

// MatchOutcome is how a finished match ended: the winner's user ID (or
// WinnerDraw) and the victory kind.
type MatchOutcome struct {
	Winner string
	Kind   string
}
