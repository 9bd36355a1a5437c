package bot

import (
	"math/rand"

	"github.com/brandonr49/board-game-engine/pkg/battleline"
)

// Strategy picks the next action for the seat whose turn it is. It must
// return one of battleline.ValidActions for that seat, or nil when there is
// nothing to do.
type Strategy interface {
	Name() string
	ChooseAction(gs *battleline.GameState, seat int) battleline.Action
}

// Difficulty names accepted by StrategyForDifficulty.
const (
	DifficultyRandom    = "random"
	DifficultyHeuristic = "heuristic"
)

// ValidDifficulty reports whether d names a known strategy.
func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyRandom, "easy", DifficultyHeuristic, "medium":
		return true
	}
	return false
}

// StrategyForDifficulty returns the strategy for a bot difficulty level.
// Unknown levels get the heuristic bot.
func StrategyForDifficulty(difficulty string) Strategy {
	switch difficulty {
	case DifficultyRandom, "easy":
		return &RandomStrategy{}
	default:
		return &HeuristicStrategy{}
	}
}

// SeededStrategy is StrategyForDifficulty with any randomness drawn from
// its own source seeded with seed.
func SeededStrategy(difficulty string, seed int64) Strategy {
	s := StrategyForDifficulty(difficulty)
	if r, ok := s.(*RandomStrategy); ok {
		r.Rng = rand.New(rand.NewSource(seed))
	}
	return s
}

// candidates returns the seat's valid actions without the auto-claim toggle,
// which never advances the game.
func candidates(gs *battleline.GameState, seat int) []battleline.Action {
	if seat < 0 || seat >= len(gs.PlayerIDs) {
		return nil
	}
	all := battleline.ValidActions(gs, gs.PlayerIDs[seat])
	out := all[:0:0]
	for _, a := range all {
		if a.Kind() != battleline.KindToggleAutoClaim {
			out = append(out, a)
		}
	}
	return out
}

// --- RandomStrategy ---

// RandomStrategy claims whatever it can and otherwise picks uniformly among
// the valid actions. A nil Rng uses the math/rand default source.
type RandomStrategy struct {
	Rng *rand.Rand
}

func (*RandomStrategy) Name() string { return DifficultyRandom }

func (s *RandomStrategy) ChooseAction(gs *battleline.GameState, seat int) battleline.Action {
	actions := candidates(gs, seat)
	if len(actions) == 0 {
		return nil
	}
	for _, a := range actions {
		if a.Kind() == battleline.KindClaimFlag {
			return a
		}
	}
	return actions[s.intn(len(actions))]
}

func (s *RandomStrategy) intn(n int) int {
	if s.Rng != nil {
		return s.Rng.Intn(n)
	}
	return rand.Intn(n)
}
