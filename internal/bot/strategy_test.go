package bot

import (
	"math/rand"
	"testing"

	"github.com/brandonr49/board-game-engine/pkg/battleline"
)

func newTestState(t *testing.T, seed int64) *battleline.GameState {
	t.Helper()
	gs, err := battleline.NewInitialState([]string{"p1", "p2"}, []string{"Alice", "Bob"}, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("NewInitialState: %v", err)
	}
	return gs
}

// claimableState puts seat 0 in the manual claim phase holding an
// unbeatable wedge on flag 0.
func claimableState(t *testing.T) *battleline.GameState {
	t.Helper()
	gs := newTestState(t, 3)
	gs.AutoClaim = false
	gs.Phase = battleline.PhaseClaimFlags
	gs.Flags[0].Sides[0] = []battleline.Card{
		battleline.Troop(battleline.Red, 8),
		battleline.Troop(battleline.Red, 9),
		battleline.Troop(battleline.Red, 10),
	}
	gs.Flags[0].CompletionTurn[0] = 0
	return gs
}

func TestStrategyForDifficulty(t *testing.T) {
	tests := []struct {
		difficulty string
		want       string
	}{
		{"random", DifficultyRandom},
		{"easy", DifficultyRandom},
		{"heuristic", DifficultyHeuristic},
		{"medium", DifficultyHeuristic},
		{"nonsense", DifficultyHeuristic},
	}
	for _, tt := range tests {
		if got := StrategyForDifficulty(tt.difficulty).Name(); got != tt.want {
			t.Errorf("StrategyForDifficulty(%q) = %s, want %s", tt.difficulty, got, tt.want)
		}
	}
	if ValidDifficulty("nonsense") {
		t.Error("nonsense should not be a valid difficulty")
	}
}

func TestStrategiesOnlyPlayValidActions(t *testing.T) {
	strategies := []Strategy{
		&RandomStrategy{Rng: rand.New(rand.NewSource(11))},
		&HeuristicStrategy{},
	}
	for _, s := range strategies {
		t.Run(s.Name(), func(t *testing.T) {
			gs := newTestState(t, 5)
			for move := 0; move < 300 && !gs.Over(); move++ {
				seat := gs.CurrentPlayer
				a := s.ChooseAction(gs, seat)
				if a == nil {
					t.Fatalf("move %d: no action in %s/%s", move, gs.Phase, gs.SubPhase)
				}
				if a.Kind() == battleline.KindToggleAutoClaim {
					t.Fatalf("move %d: strategy toggled auto-claim", move)
				}
				res, err := battleline.ApplyAction(gs, gs.PlayerIDs[seat], a)
				if err != nil {
					t.Fatalf("move %d: %s rejected: %v", move, a.Kind(), err)
				}
				gs = res.State
			}
		})
	}
}

func TestStrategiesClaimFirst(t *testing.T) {
	for _, s := range []Strategy{&RandomStrategy{}, &HeuristicStrategy{}} {
		gs := claimableState(t)
		a := s.ChooseAction(gs, 0)
		if a != (battleline.ClaimFlag{FlagIndex: 0}) {
			t.Errorf("%s chose %#v, want claim of flag 0", s.Name(), a)
		}
	}
}

func TestNoActionOffTurn(t *testing.T) {
	gs := newTestState(t, 1)
	if a := (&HeuristicStrategy{}).ChooseAction(gs, 1); a != nil {
		t.Errorf("expected nil off turn, got %#v", a)
	}
	if a := (&RandomStrategy{}).ChooseAction(gs, 5); a != nil {
		t.Errorf("expected nil for bad seat, got %#v", a)
	}
}

func TestHeuristicBuildsWedge(t *testing.T) {
	gs := newTestState(t, 1)
	gs.Players[0].Hand = []battleline.Card{
		battleline.Troop(battleline.Blue, 1),
		battleline.Troop(battleline.Red, 5),
	}
	gs.Flags[0].Sides[0] = []battleline.Card{
		battleline.Troop(battleline.Red, 4),
		battleline.Troop(battleline.Red, 6),
	}

	a := (&HeuristicStrategy{}).ChooseAction(gs, 0)
	if a != (battleline.PlayTroop{CardIndex: 1, FlagIndex: 0}) {
		t.Errorf("chose %#v, want red 5 onto flag 0", a)
	}
}

func TestHeuristicReturnsLowestOnScout(t *testing.T) {
	gs := newTestState(t, 1)
	gs.Phase = battleline.PhaseSubPhase
	gs.SubPhase = battleline.SubScoutReturn
	gs.Scout = &battleline.ScoutState{ReturnsRemaining: 2}
	gs.Players[0].Hand = []battleline.Card{
		battleline.Troop(battleline.Red, 9),
		battleline.Troop(battleline.Blue, 1),
		battleline.Tactic(battleline.Fog),
	}

	a := (&HeuristicStrategy{}).ChooseAction(gs, 0)
	want := battleline.ScoutReturnCard{CardIndex: 1, Deck: battleline.DeckTroop}
	if a != want {
		t.Errorf("chose %#v, want %#v", a, want)
	}
}

func TestHeuristicAvoidsPass(t *testing.T) {
	gs := newTestState(t, 1)
	gs.Players[0].Hand = []battleline.Card{battleline.Tactic(battleline.Alexander)}

	a := (&HeuristicStrategy{}).ChooseAction(gs, 0)
	if _, ok := a.(battleline.PlayMoraleTactic); !ok {
		t.Errorf("chose %#v, want the leader played", a)
	}
}
