package battleline

import "slices"

// handCard returns the card at idx in the acting player's hand.
func (t *turn) handCard(kind ActionKind, idx int) (Card, error) {
	hand := t.player().Hand
	if idx < 0 || idx >= len(hand) {
		return Card{}, invalid(kind, "card index %d out of range (hand has %d)", idx, len(hand))
	}
	return hand[idx], nil
}

func (t *turn) takeFromHand(idx int) Card {
	p := t.player()
	c := p.Hand[idx]
	p.Hand = slices.Delete(p.Hand, idx, idx+1)
	return c
}

// checkPlacement verifies the acting player's side of flag fi can take a card.
func (t *turn) checkPlacement(kind ActionKind, fi int) error {
	if fi < 0 || fi >= NumFlags {
		return invalid(kind, "flag index %d out of range", fi)
	}
	f := &t.gs.Flags[fi]
	if f.Claimed() {
		return invalid(kind, "flag %d is already claimed", fi+1)
	}
	if f.Complete(t.seat) {
		return invalid(kind, "your side of flag %d is full", fi+1)
	}
	return nil
}

// place puts a card on the acting player's side of flag fi.
func (t *turn) place(c Card, fi int) {
	f := &t.gs.Flags[fi]
	f.Sides[t.seat] = append(f.Sides[t.seat], c)
	f.markComplete(t.seat, t.gs.TurnNumber)
	if c.IsLeader() {
		t.player().HasLeaderOnBoard = true
	}
}

// checkTacticsQuota rejects a tactics play that would put the player two
// cards ahead of the opponent.
func (t *turn) checkTacticsQuota(kind ActionKind) error {
	if t.player().TacticsPlayed > t.opponent().TacticsPlayed {
		return invalid(kind, "cannot play more tactics than your opponent has played")
	}
	return nil
}

func (t *turn) playTroop(a PlayTroop) error {
	c, err := t.handCard(a.Kind(), a.CardIndex)
	if err != nil {
		return err
	}
	if !c.IsTroop() {
		return invalid(a.Kind(), "%s is not a troop card", c)
	}
	if err := t.checkPlacement(a.Kind(), a.FlagIndex); err != nil {
		return err
	}
	t.place(t.takeFromHand(a.CardIndex), a.FlagIndex)
	t.logf("%s plays %s on flag %d", t.name(), c, a.FlagIndex+1)
	t.enterClaimPhase(false)
	return nil
}

func (t *turn) playMoraleTactic(a PlayMoraleTactic) error {
	c, err := t.handCard(a.Kind(), a.CardIndex)
	if err != nil {
		return err
	}
	if !c.IsWild() {
		return invalid(a.Kind(), "%s is not a leader or morale tactic", c)
	}
	if err := t.checkTacticsQuota(a.Kind()); err != nil {
		return err
	}
	if c.IsLeader() && t.player().HasLeaderOnBoard {
		return invalid(a.Kind(), "you already have a leader on the board")
	}
	if err := t.checkPlacement(a.Kind(), a.FlagIndex); err != nil {
		return err
	}
	t.place(t.takeFromHand(a.CardIndex), a.FlagIndex)
	t.player().TacticsPlayed++
	t.logf("%s plays %s on flag %d", t.name(), c, a.FlagIndex+1)
	t.enterClaimPhase(false)
	return nil
}

func (t *turn) playEnvironment(a PlayEnvironment) error {
	c, err := t.handCard(a.Kind(), a.CardIndex)
	if err != nil {
		return err
	}
	if c.Type != TacticsCard || c.Subtype != SubtypeEnvironment {
		return invalid(a.Kind(), "%s is not an environment tactic", c)
	}
	if err := t.checkTacticsQuota(a.Kind()); err != nil {
		return err
	}
	if a.FlagIndex < 0 || a.FlagIndex >= NumFlags {
		return invalid(a.Kind(), "flag index %d out of range", a.FlagIndex)
	}
	f := &t.gs.Flags[a.FlagIndex]
	if f.Claimed() {
		return invalid(a.Kind(), "flag %d is already claimed", a.FlagIndex+1)
	}
	if f.HasEnvironment(c.ID) {
		return invalid(a.Kind(), "%s is already on flag %d", c, a.FlagIndex+1)
	}

	t.takeFromHand(a.CardIndex)
	f.Environment = append(f.Environment, c.ID)
	t.player().TacticsPlayed++
	if c.ID == Mud {
		// a side that was exactly full is no longer complete
		for side := range f.Sides {
			f.clearIncomplete(side)
		}
	}
	t.logf("%s plays %s on flag %d", t.name(), c, a.FlagIndex+1)
	t.enterClaimPhase(false)
	return nil
}

// openFlags returns every unclaimed flag where side can still take a card.
func openFlags(gs *GameState, side int) []int {
	var out []int
	for i := range gs.Flags {
		if gs.Flags[i].Open(side) {
			out = append(out, i)
		}
	}
	return out
}

func hasTroop(hand []Card) bool {
	return slices.ContainsFunc(hand, Card.IsTroop)
}

// canPass reports whether the player has nothing they are forced to play:
// no troops in hand, or no open side to put one on.
func canPass(gs *GameState, seat int) bool {
	return !hasTroop(gs.Players[seat].Hand) || len(openFlags(gs, seat)) == 0
}

func (t *turn) pass(a Pass) error {
	if !canPass(t.gs, t.seat) {
		return invalid(a.Kind(), "you hold troop cards and have open flag slots")
	}
	t.gs.ConsecutivePasses++
	t.logf("%s passes", t.name())
	if t.gs.ConsecutivePasses >= 2 {
		t.gs.Winner = Draw
		t.logf("Both players passed in a row, the game is a draw")
		return nil
	}
	t.enterClaimPhase(false)
	return nil
}
