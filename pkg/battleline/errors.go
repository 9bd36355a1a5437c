package battleline

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownPlayer = errors.New("player not in this game")
	ErrGameOver      = errors.New("game is over")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrWrongPhase    = errors.New("action not allowed in this phase")
	ErrInvalidAction = errors.New("invalid action")
)

// ValidationError describes why an otherwise well-placed action breaks a rule.
type ValidationError struct {
	Kind    ActionKind
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Kind, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidAction }

func invalid(kind ActionKind, format string, args ...any) error {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrongPhase(kind ActionKind, gs *GameState) error {
	if gs.Phase == PhaseSubPhase {
		return fmt.Errorf("%w: %s during %s", ErrWrongPhase, kind, gs.SubPhase)
	}
	return fmt.Errorf("%w: %s during %s", ErrWrongPhase, kind, gs.Phase)
}
