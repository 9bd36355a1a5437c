package battleline

import "slices"

// Scout draws up to this many cards and returns up to scoutReturns.
const (
	scoutDraws   = 3
	scoutReturns = 2
)

// playGuile discards the guile card at idx and opens its sub-protocol. ready
// reports whether the board offers anything for the card to act on.
func (t *turn) playGuile(kind ActionKind, idx int, id TacticID, ready bool, reason string, next SubPhase) error {
	c, err := t.handCard(kind, idx)
	if err != nil {
		return err
	}
	if c.Type != TacticsCard || c.ID != id {
		return invalid(kind, "%s is not %s", c, Tactic(id).Name)
	}
	if err := t.checkTacticsQuota(kind); err != nil {
		return err
	}
	if !ready {
		return invalid(kind, "%s", reason)
	}
	t.takeFromHand(idx)
	t.player().TacticsPlayed++
	t.gs.Discard[t.seat] = append(t.gs.Discard[t.seat], c)
	t.enterSubPhase(next)
	t.logf("%s plays %s", t.name(), c)
	return nil
}

func (t *turn) playScout(a PlayScout) error {
	if err := t.playGuile(a.Kind(), a.CardIndex, Scout, !t.gs.DecksEmpty(), "both decks are empty", SubScoutDraw); err != nil {
		return err
	}
	t.gs.Scout = &ScoutState{
		DrawsRemaining:   min(scoutDraws, len(t.gs.TroopDeck)+len(t.gs.TacticsDeck)),
		ReturnsRemaining: scoutReturns,
	}
	t.gs.SkipDraw = true
	return nil
}

func (t *turn) playRedeploy(a PlayRedeploy) error {
	ready := hasCardsOnUnclaimed(t.gs, t.seat, false)
	return t.playGuile(a.Kind(), a.CardIndex, Redeploy, ready, "you have no cards on unclaimed flags", SubRedeployPick)
}

func (t *turn) playDeserter(a PlayDeserter) error {
	ready := hasCardsOnUnclaimed(t.gs, opponentOf(t.seat), false)
	return t.playGuile(a.Kind(), a.CardIndex, Deserter, ready, "your opponent has no cards on unclaimed flags", SubDeserterPick)
}

func (t *turn) playTraitor(a PlayTraitor) error {
	ready, reason := true, ""
	switch {
	case !hasCardsOnUnclaimed(t.gs, opponentOf(t.seat), true):
		ready, reason = false, "your opponent has no troops on unclaimed flags"
	case len(openFlags(t.gs, t.seat)) == 0:
		ready, reason = false, "you have no open flag to place a stolen troop on"
	}
	return t.playGuile(a.Kind(), a.CardIndex, Traitor, ready, reason, SubTraitorPick)
}

// hasCardsOnUnclaimed reports whether side has a card (a troop, when
// troopsOnly is set) on any unclaimed flag.
func hasCardsOnUnclaimed(gs *GameState, side int, troopsOnly bool) bool {
	for i := range gs.Flags {
		f := &gs.Flags[i]
		if f.Claimed() {
			continue
		}
		for _, c := range f.Sides[side] {
			if c.IsTroop() || (!troopsOnly && c.Deployable()) {
				return true
			}
		}
	}
	return false
}

func (t *turn) scoutDraw(a ScoutDrawCard) error {
	if err := t.drawFrom(a.Kind(), a.Deck); err != nil {
		return err
	}
	t.logf("%s scouts the %s deck", t.name(), a.Deck)
	s := t.gs.Scout
	if s == nil {
		s = &ScoutState{DrawsRemaining: 1}
		t.gs.Scout = s
	}
	s.DrawsRemaining--
	if s.DrawsRemaining <= 0 || t.gs.DecksEmpty() {
		s.DrawsRemaining = 0
		s.ReturnsRemaining = min(scoutReturns, len(t.player().Hand))
		t.enterSubPhase(SubScoutReturn)
	}
	return nil
}

func (t *turn) scoutReturn(a ScoutReturnCard) error {
	c, err := t.handCard(a.Kind(), a.CardIndex)
	if err != nil {
		return err
	}
	deck := deckFor(c)
	if a.Deck != "" && a.Deck != deck {
		return invalid(a.Kind(), "%s cards go back to the %s deck", c.Type, deck)
	}
	t.takeFromHand(a.CardIndex)
	pile := t.gs.deck(deck)
	*pile = append(*pile, c)
	t.logf("%s returns a card to the %s deck", t.name(), deck)

	s := t.gs.Scout
	if s == nil {
		s = &ScoutState{ReturnsRemaining: 1}
	}
	s.ReturnsRemaining--
	if s.ReturnsRemaining > 0 && len(t.player().Hand) > 0 {
		return nil
	}
	t.gs.Scout = nil
	t.enterClaimPhase(true)
	return nil
}

// pickFromFlag removes the card at slot on side of flag fi. troopsOnly
// restricts the pick to troop cards.
func (t *turn) pickFromFlag(kind ActionKind, side, fi, slot int, troopsOnly bool) (Card, error) {
	if fi < 0 || fi >= NumFlags {
		return Card{}, invalid(kind, "flag index %d out of range", fi)
	}
	f := &t.gs.Flags[fi]
	if f.Claimed() {
		return Card{}, invalid(kind, "flag %d is already claimed", fi+1)
	}
	cards := f.Sides[side]
	if slot < 0 || slot >= len(cards) {
		return Card{}, invalid(kind, "slot %d out of range on flag %d", slot, fi+1)
	}
	c := cards[slot]
	if troopsOnly && !c.IsTroop() {
		return Card{}, invalid(kind, "%s is not a troop card", c)
	}
	if !c.Deployable() {
		return Card{}, invalid(kind, "%s cannot be moved", c)
	}
	f.Sides[side] = slices.Delete(cards, slot, slot+1)
	f.clearIncomplete(side)
	if c.IsLeader() {
		t.gs.Players[side].HasLeaderOnBoard = false
	}
	return c, nil
}

func (t *turn) redeployPick(a RedeployPick) error {
	c, err := t.pickFromFlag(a.Kind(), t.seat, a.FlagIndex, a.SlotIndex, false)
	if err != nil {
		return err
	}
	t.gs.Redeploy = &PickedCard{Card: c, FromFlag: a.FlagIndex}
	t.enterSubPhase(SubRedeployPlace)
	t.logf("%s picks up %s from flag %d", t.name(), c, a.FlagIndex+1)
	return nil
}

func (t *turn) redeployPlace(a RedeployPlaceToFlag) error {
	r := t.gs.Redeploy
	if r == nil {
		return invalid(a.Kind(), "no card has been picked up")
	}
	if a.FlagIndex == r.FromFlag {
		return invalid(a.Kind(), "cannot redeploy back to flag %d", a.FlagIndex+1)
	}
	if err := t.checkPlacement(a.Kind(), a.FlagIndex); err != nil {
		return err
	}
	t.place(r.Card, a.FlagIndex)
	t.gs.Redeploy = nil
	t.logf("%s redeploys %s to flag %d", t.name(), r.Card, a.FlagIndex+1)
	t.enterClaimPhase(false)
	return nil
}

func (t *turn) redeployDiscard(a RedeployDiscard) error {
	r := t.gs.Redeploy
	if r == nil {
		return invalid(a.Kind(), "no card has been picked up")
	}
	t.gs.Discard[t.seat] = append(t.gs.Discard[t.seat], r.Card)
	t.gs.Redeploy = nil
	t.logf("%s discards %s", t.name(), r.Card)
	t.enterClaimPhase(false)
	return nil
}

func (t *turn) deserterPick(a DeserterPick) error {
	opp := opponentOf(t.seat)
	c, err := t.pickFromFlag(a.Kind(), opp, a.FlagIndex, a.SlotIndex, false)
	if err != nil {
		return err
	}
	t.gs.Discard[opp] = append(t.gs.Discard[opp], c)
	t.logf("%s deserts %s from flag %d", t.name(), c, a.FlagIndex+1)
	t.enterClaimPhase(false)
	return nil
}

func (t *turn) traitorPick(a TraitorPick) error {
	c, err := t.pickFromFlag(a.Kind(), opponentOf(t.seat), a.FlagIndex, a.SlotIndex, true)
	if err != nil {
		return err
	}
	t.gs.Traitor = &PickedCard{Card: c, FromFlag: a.FlagIndex}
	t.enterSubPhase(SubTraitorPlace)
	t.logf("%s steals %s from flag %d", t.name(), c, a.FlagIndex+1)
	return nil
}

func (t *turn) traitorPlace(a TraitorPlace) error {
	if t.gs.Traitor == nil {
		return invalid(a.Kind(), "no troop has been stolen")
	}
	if err := t.checkPlacement(a.Kind(), a.FlagIndex); err != nil {
		return err
	}
	c := t.gs.Traitor.Card
	t.place(c, a.FlagIndex)
	t.gs.Traitor = nil
	t.logf("%s places stolen %s on flag %d", t.name(), c, a.FlagIndex+1)
	t.enterClaimPhase(false)
	return nil
}
