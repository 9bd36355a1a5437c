package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/brandonr49/board-game-engine/pkg/battleline"
)

// DefaultMaxMoves caps arena matches so a misbehaving strategy cannot spin
// forever. A full match takes a few hundred actions.
const DefaultMaxMoves = 2000

// ErrNoAction is returned when a strategy has nothing to play while the
// match is still running.
var ErrNoAction = errors.New("strategy returned no action")

// ArenaConfig configures a single bot-vs-bot match.
type ArenaConfig struct {
	Strategies [2]Strategy
	Seed       int64 // 0 = random
	MaxMoves   int   // 0 = DefaultMaxMoves
}

// ArenaResult describes the outcome of a finished arena match.
type ArenaResult struct {
	Seed         int64
	Winner       int // seat, battleline.Draw, or battleline.NoWinner when capped
	Kind         battleline.VictoryKind
	Turns        int
	Moves        int
	FlagsClaimed [2]int
	Capped       bool
}

// NewArenaConfig builds a match between two difficulty levels in which the
// deal and every seat's choices derive from seed, so a result can be
// replayed from its Seed. A zero seed picks a random one.
func NewArenaConfig(difficulties [2]string, seed int64, maxMoves int) ArenaConfig {
	if seed == 0 {
		seed = rand.Int63()
	}
	cfg := ArenaConfig{Seed: seed, MaxMoves: maxMoves}
	for seat, d := range difficulties {
		cfg.Strategies[seat] = SeededStrategy(d, seatSeed(seed, seat))
	}
	return cfg
}

// seatSeed derives a seat's strategy seed from the match seed.
func seatSeed(seed int64, seat int) int64 {
	return int64(uint64(seed) ^ uint64(seat+1)*0x9E3779B97F4A7C15)
}

// RunMatch plays one match between two strategies until it ends or the move
// cap is reached.
func RunMatch(ctx context.Context, cfg ArenaConfig) (*ArenaResult, error) {
	for i, s := range cfg.Strategies {
		if s == nil {
			return nil, fmt.Errorf("seat %d has no strategy", i)
		}
	}
	if cfg.Seed == 0 {
		cfg.Seed = rand.Int63()
	}
	if cfg.MaxMoves == 0 {
		cfg.MaxMoves = DefaultMaxMoves
	}

	names := []string{
		fmt.Sprintf("%s (seat 0)", cfg.Strategies[0].Name()),
		fmt.Sprintf("%s (seat 1)", cfg.Strategies[1].Name()),
	}
	gs, err := battleline.NewInitialState([]string{"bot-0", "bot-1"}, names, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		return nil, fmt.Errorf("new match: %w", err)
	}

	result := &ArenaResult{Seed: cfg.Seed, Winner: battleline.NoWinner}
	for !gs.Over() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if result.Moves >= cfg.MaxMoves {
			result.Capped = true
			log.Warn().Int64("seed", cfg.Seed).Int("moves", result.Moves).Msg("Arena match hit move cap")
			break
		}

		seat := gs.CurrentPlayer
		action := cfg.Strategies[seat].ChooseAction(gs, seat)
		if action == nil {
			return nil, fmt.Errorf("seat %d in %s/%s: %w", seat, gs.Phase, gs.SubPhase, ErrNoAction)
		}
		res, err := battleline.ApplyAction(gs, gs.PlayerIDs[seat], action)
		if err != nil {
			return nil, fmt.Errorf("seat %d %s: %w", seat, action.Kind(), err)
		}
		gs = res.State
		result.Moves++
	}

	result.Turns = gs.TurnNumber
	result.FlagsClaimed = [2]int{gs.ClaimedCount(0), gs.ClaimedCount(1)}
	if gs.Over() {
		result.Winner = gs.Winner
		if _, kind, ok := battleline.CheckWinner(gs); ok {
			result.Kind = kind
		}
	}

	log.Debug().
		Int64("seed", cfg.Seed).
		Int("winner", result.Winner).
		Str("kind", string(result.Kind)).
		Int("turns", result.Turns).
		Int("moves", result.Moves).
		Msg("Arena match finished")
	return result, nil
}
