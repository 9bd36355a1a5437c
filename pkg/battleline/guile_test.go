package battleline

import (
	"errors"
	"testing"
)

func TestScoutCycle(t *testing.T) {
	gs := newTestGame(t)
	gs.Players[0].Hand = []Card{
		Tactic(Scout),
		Troop(Red, 1), Troop(Red, 2), Troop(Red, 3),
		Troop(Blue, 1), Troop(Blue, 2), Troop(Blue, 3),
	}
	start := len(gs.Players[0].Hand)

	res := mustApply(t, gs, "p1", PlayScout{CardIndex: 0})
	s := res.State
	if s.Phase != PhaseSubPhase || s.SubPhase != SubScoutDraw || s.Scout.DrawsRemaining != 3 {
		t.Fatalf("after scout: phase %s/%s scout %+v", s.Phase, s.SubPhase, s.Scout)
	}
	if d := s.Discard[0]; len(d) != 1 || d[0].ID != Scout {
		t.Errorf("scout not discarded: %v", d)
	}

	for _, deck := range []DeckName{DeckTroop, DeckTactics, DeckTroop} {
		res = mustApply(t, s, "p1", ScoutDrawCard{Deck: deck})
		s = res.State
	}
	if s.SubPhase != SubScoutReturn || s.Scout.ReturnsRemaining != 2 {
		t.Fatalf("after draws: sub-phase %s scout %+v", s.SubPhase, s.Scout)
	}

	returned := s.Players[0].Hand[0]
	res = mustApply(t, s, "p1", ScoutReturnCard{CardIndex: 0, Deck: DeckTroop})
	s = res.State
	if top := s.TroopDeck[len(s.TroopDeck)-1]; top != returned {
		t.Errorf("returned card not on top: got %s, want %s", top, returned)
	}
	res = mustApply(t, s, "p1", ScoutReturnCard{CardIndex: 0})
	s = res.State

	if s.CurrentPlayer != 1 || s.Phase != PhasePlayCard || s.Scout != nil || s.SkipDraw {
		t.Fatalf("scout should end the turn without a draw: player %d phase %s", s.CurrentPlayer, s.Phase)
	}
	if got := len(s.Players[0].Hand); got != start {
		t.Errorf("hand size after scout = %d, want %d", got, start)
	}
}

func TestScoutManualClaimSkipsDraw(t *testing.T) {
	gs := newTestGame(t)
	gs.AutoClaim = false
	gs.Players[0].Hand = []Card{Tactic(Scout), Troop(Red, 1)}

	s := mustApply(t, gs, "p1", PlayScout{CardIndex: 0}).State
	for range 3 {
		s = mustApply(t, s, "p1", ScoutDrawCard{Deck: DeckTroop}).State
	}
	s = mustApply(t, s, "p1", ScoutReturnCard{CardIndex: 0}).State
	s = mustApply(t, s, "p1", ScoutReturnCard{CardIndex: 0}).State
	if s.Phase != PhaseClaimFlags || !s.SkipDraw {
		t.Fatalf("phase = %s skip = %v", s.Phase, s.SkipDraw)
	}
	s = mustApply(t, s, "p1", DoneClaiming{}).State
	if s.CurrentPlayer != 1 || s.Phase != PhasePlayCard {
		t.Errorf("done claiming after scout should end the turn, phase %s", s.Phase)
	}
}

func TestScoutShortDeck(t *testing.T) {
	gs := newTestGame(t)
	gs.Players[0].Hand = []Card{Tactic(Scout)}
	gs.TroopDeck = []Card{Troop(Orange, 7)}
	gs.TacticsDeck = nil

	s := mustApply(t, gs, "p1", PlayScout{CardIndex: 0}).State
	if s.Scout.DrawsRemaining != 1 {
		t.Fatalf("draws = %d, want 1", s.Scout.DrawsRemaining)
	}
	s = mustApply(t, s, "p1", ScoutDrawCard{Deck: DeckTroop}).State
	if s.SubPhase != SubScoutReturn || s.Scout.ReturnsRemaining != 1 {
		t.Fatalf("sub-phase %s scout %+v", s.SubPhase, s.Scout)
	}
	s = mustApply(t, s, "p1", ScoutReturnCard{CardIndex: 0}).State
	if s.CurrentPlayer != 1 {
		t.Error("single return should finish the scout")
	}

	gs.TroopDeck = nil
	if _, err := ApplyAction(gs, "p1", PlayScout{CardIndex: 0}); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("scout with empty decks: err = %v", err)
	}
}

func TestScoutReturnWrongDeck(t *testing.T) {
	gs := newTestGame(t)
	gs.Phase, gs.SubPhase = PhaseSubPhase, SubScoutReturn
	gs.Scout = &ScoutState{ReturnsRemaining: 2}
	gs.Players[0].Hand = []Card{Troop(Red, 5), Tactic(Fog)}

	if _, err := ApplyAction(gs, "p1", ScoutReturnCard{CardIndex: 0, Deck: DeckTactics}); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("troop to tactics deck: err = %v", err)
	}
	s := mustApply(t, gs, "p1", ScoutReturnCard{CardIndex: 1, Deck: DeckTactics}).State
	if top := s.TacticsDeck[len(s.TacticsDeck)-1]; top.ID != Fog {
		t.Errorf("tactics top = %s, want Fog", top)
	}
}

func TestRedeploy(t *testing.T) {
	gs := newTestGame(t)
	gs.Players[0].Hand = []Card{Tactic(Redeploy), Troop(Red, 1)}
	gs.Flags[0].Sides[0] = []Card{Troop(Red, 5), Troop(Red, 6), Troop(Red, 7)}
	gs.Flags[0].CompletionTurn[0] = 0
	gs.Flags[0].Sides[1] = []Card{Troop(Blue, 10)}

	s := mustApply(t, gs, "p1", PlayRedeploy{CardIndex: 0}).State
	if s.SubPhase != SubRedeployPick || s.Players[0].TacticsPlayed != 1 {
		t.Fatalf("sub-phase %s", s.SubPhase)
	}
	if _, err := ApplyAction(s, "p1", RedeployPick{FlagIndex: 0, SlotIndex: 3}); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("bad slot: err = %v", err)
	}

	res := mustApply(t, s, "p1", RedeployPick{FlagIndex: 0, SlotIndex: 2})
	s = res.State
	if s.Redeploy == nil || s.Redeploy.Card != Troop(Red, 7) || s.Flags[0].CompletionTurn[0] != NoTurn {
		t.Fatalf("pick: %+v completion %v", s.Redeploy, s.Flags[0].CompletionTurn)
	}
	if _, err := ApplyAction(s, "p1", RedeployPlaceToFlag{FlagIndex: 0}); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("placing back on the source flag: err = %v", err)
	}
	for _, a := range ValidActions(s, "p1") {
		if p, ok := a.(RedeployPlaceToFlag); ok && p.FlagIndex == 0 {
			t.Error("source flag offered as a destination")
		}
	}

	res = mustApply(t, s, "p1", RedeployPlaceToFlag{FlagIndex: 8})
	s = res.State
	if got := s.Flags[8].Sides[0]; len(got) != 1 || got[0] != Troop(Red, 7) {
		t.Errorf("flag 8 = %v", got)
	}
	if s.Redeploy != nil || s.Phase != PhaseDrawCard {
		t.Errorf("redeploy not finished: phase %s", s.Phase)
	}
	if !logContains(res.Log, "Alice redeploys red 7 to flag 9") {
		t.Errorf("log = %v", res.Log)
	}
}

func TestRedeployDiscardLeader(t *testing.T) {
	gs := newTestGame(t)
	gs.Players[0].Hand = []Card{Tactic(Redeploy)}
	gs.Players[0].HasLeaderOnBoard = true
	gs.Players[0].TacticsPlayed = 1
	gs.Players[1].TacticsPlayed = 1
	gs.Flags[2].Sides[0] = []Card{Tactic(Alexander)}

	s := mustApply(t, gs, "p1", PlayRedeploy{CardIndex: 0}).State
	s = mustApply(t, s, "p1", RedeployPick{FlagIndex: 2, SlotIndex: 0}).State
	if s.Players[0].HasLeaderOnBoard {
		t.Error("leader still tracked while lifted")
	}
	s = mustApply(t, s, "p1", RedeployDiscard{}).State
	d := s.Discard[0]
	if len(d) != 2 || d[1].ID != Alexander {
		t.Errorf("discard = %v", d)
	}
	if s.Players[0].HasLeaderOnBoard || len(s.Flags[2].Sides[0]) != 0 {
		t.Error("leader should be gone from the board")
	}
}

func TestDeserter(t *testing.T) {
	gs := newTestGame(t)
	gs.Players[0].Hand = []Card{Tactic(Deserter)}
	f := &gs.Flags[4]
	f.Sides[1] = []Card{Troop(Blue, 7), Troop(Blue, 8), Troop(Blue, 9)}
	f.CompletionTurn[1] = 1

	s := mustApply(t, gs, "p1", PlayDeserter{CardIndex: 0}).State
	if s.SubPhase != SubDeserterPick {
		t.Fatalf("sub-phase %s", s.SubPhase)
	}
	if _, err := ApplyAction(s, "p1", DeserterPick{FlagIndex: 3, SlotIndex: 0}); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("empty flag: err = %v", err)
	}
	res := mustApply(t, s, "p1", DeserterPick{FlagIndex: 4, SlotIndex: 1})
	s = res.State
	if got := s.Flags[4].Sides[1]; len(got) != 2 || got[1] != Troop(Blue, 9) {
		t.Errorf("opponent side = %v", got)
	}
	if s.Flags[4].CompletionTurn[1] != NoTurn {
		t.Error("completion turn not cleared")
	}
	if d := s.Discard[1]; len(d) != 1 || d[0] != Troop(Blue, 8) {
		t.Errorf("opponent discard = %v", d)
	}
	if !logContains(res.Log, "Alice deserts blue 8 from flag 5") {
		t.Errorf("log = %v", res.Log)
	}
}

func TestDeserterNeedsTarget(t *testing.T) {
	gs := newTestGame(t)
	gs.Players[0].Hand = []Card{Tactic(Deserter)}
	gs.Flags[0].Sides[1] = []Card{Troop(Blue, 7)}
	gs.Flags[0].ClaimedBy = 1

	if _, err := ApplyAction(gs, "p1", PlayDeserter{CardIndex: 0}); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("err = %v, want invalid action", err)
	}
}

func TestTraitor(t *testing.T) {
	gs := newTestGame(t)
	gs.Players[0].Hand = []Card{Tactic(Traitor)}
	gs.Players[1].TacticsPlayed = 1
	gs.Flags[2].Sides[1] = []Card{Tactic(CompanionCavalry), Troop(Blue, 7)}

	s := mustApply(t, gs, "p1", PlayTraitor{CardIndex: 0}).State
	if _, err := ApplyAction(s, "p1", TraitorPick{FlagIndex: 2, SlotIndex: 0}); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("stealing a morale card: err = %v", err)
	}
	want := []Action{TraitorPick{FlagIndex: 2, SlotIndex: 1}, ToggleAutoClaim{}}
	if got := ValidActions(s, "p1"); len(got) != 2 || got[0] != want[0] {
		t.Errorf("ValidActions = %v, want %v", got, want)
	}

	res := mustApply(t, s, "p1", TraitorPick{FlagIndex: 2, SlotIndex: 1})
	s = res.State
	if s.SubPhase != SubTraitorPlace || s.Traitor.Card != Troop(Blue, 7) {
		t.Fatalf("sub-phase %s traitor %+v", s.SubPhase, s.Traitor)
	}
	if !logContains(res.Log, "Alice steals blue 7 from flag 3") {
		t.Errorf("log = %v", res.Log)
	}

	s = mustApply(t, s, "p1", TraitorPlace{FlagIndex: 2}).State
	if got := s.Flags[2].Sides[0]; len(got) != 1 || got[0] != Troop(Blue, 7) {
		t.Errorf("own side = %v", got)
	}
	if got := s.Flags[2].Sides[1]; len(got) != 1 || got[0].ID != CompanionCavalry {
		t.Errorf("opponent side = %v", got)
	}
	if s.Traitor != nil || s.Phase != PhaseDrawCard {
		t.Errorf("traitor not finished: phase %s", s.Phase)
	}
}

func TestTraitorNeedsTroop(t *testing.T) {
	gs := newTestGame(t)
	gs.Players[0].Hand = []Card{Tactic(Traitor), Troop(Red, 2)}
	gs.Flags[2].Sides[1] = []Card{Tactic(CompanionCavalry)}

	if _, err := ApplyAction(gs, "p1", PlayTraitor{CardIndex: 0}); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("err = %v, want invalid action", err)
	}
	for _, a := range ValidActions(gs, "p1") {
		if a.Kind() == KindPlayTraitor {
			t.Error("traitor offered without a target")
		}
	}
}
