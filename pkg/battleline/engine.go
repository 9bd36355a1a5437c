package battleline

import "fmt"

// ActionResult is the outcome of a successful ApplyAction.
type ActionResult struct {
	State    *GameState
	Log      []string
	GameOver bool
}

// ApplyAction validates and applies one action for playerID. The input state
// is never modified: the action runs against a clone that is returned only
// when every rule check passes.
func ApplyAction(gs *GameState, playerID string, action Action) (*ActionResult, error) {
	seat, err := gs.PlayerIndex(playerID)
	if err != nil {
		return nil, err
	}
	if gs.Over() {
		return nil, ErrGameOver
	}
	if gs.CurrentPlayer != seat {
		return nil, ErrNotYourTurn
	}
	if action == nil {
		return nil, fmt.Errorf("%w: no action given", ErrInvalidAction)
	}

	t := &turn{gs: gs.Clone(), seat: seat}
	if err := t.dispatch(action); err != nil {
		return nil, err
	}
	if action.Kind().IsCardPlay() {
		t.gs.ConsecutivePasses = 0
	}

	over := t.gs.Winner == Draw
	if !over {
		if p, kind, ok := CheckWinner(t.gs); ok {
			t.gs.Winner = p
			over = true
			t.logf("%s wins by %s!", t.gs.Players[p].Name, kind)
		}
	}
	return &ActionResult{State: t.gs, Log: t.log, GameOver: over}, nil
}

// turn carries the working copy and the acting seat through one action.
type turn struct {
	gs   *GameState
	seat int
	log  []string
}

func (t *turn) logf(format string, args ...any) {
	t.log = append(t.log, fmt.Sprintf(format, args...))
}

func (t *turn) player() *Player   { return &t.gs.Players[t.seat] }
func (t *turn) opponent() *Player { return &t.gs.Players[opponentOf(t.seat)] }
func (t *turn) name() string      { return t.player().Name }

// step is the phase (and sub-phase) an action kind is legal in.
type step struct {
	phase Phase
	sub   SubPhase
}

var actionSteps = map[ActionKind]step{
	KindPlayTroop:           {PhasePlayCard, NoSubPhase},
	KindPlayMoraleTactic:    {PhasePlayCard, NoSubPhase},
	KindPlayEnvironment:     {PhasePlayCard, NoSubPhase},
	KindPlayScout:           {PhasePlayCard, NoSubPhase},
	KindPlayRedeploy:        {PhasePlayCard, NoSubPhase},
	KindPlayDeserter:        {PhasePlayCard, NoSubPhase},
	KindPlayTraitor:         {PhasePlayCard, NoSubPhase},
	KindPass:                {PhasePlayCard, NoSubPhase},
	KindClaimFlag:           {PhaseClaimFlags, NoSubPhase},
	KindDoneClaiming:        {PhaseClaimFlags, NoSubPhase},
	KindDrawCard:            {PhaseDrawCard, NoSubPhase},
	KindScoutDrawCard:       {PhaseSubPhase, SubScoutDraw},
	KindScoutReturnCard:     {PhaseSubPhase, SubScoutReturn},
	KindRedeployPick:        {PhaseSubPhase, SubRedeployPick},
	KindRedeployPlaceToFlag: {PhaseSubPhase, SubRedeployPlace},
	KindRedeployDiscard:     {PhaseSubPhase, SubRedeployPlace},
	KindDeserterPick:        {PhaseSubPhase, SubDeserterPick},
	KindTraitorPick:         {PhaseSubPhase, SubTraitorPick},
	KindTraitorPlace:        {PhaseSubPhase, SubTraitorPlace},
}

func (t *turn) dispatch(action Action) error {
	if a, ok := action.(ToggleAutoClaim); ok {
		return t.toggleAutoClaim(a)
	}
	want, ok := actionSteps[action.Kind()]
	if !ok {
		return fmt.Errorf("%w: unknown action kind %q", ErrInvalidAction, action.Kind())
	}
	if t.gs.Phase != want.phase || t.gs.SubPhase != want.sub {
		return wrongPhase(action.Kind(), t.gs)
	}

	switch a := action.(type) {
	case PlayTroop:
		return t.playTroop(a)
	case PlayMoraleTactic:
		return t.playMoraleTactic(a)
	case PlayEnvironment:
		return t.playEnvironment(a)
	case PlayScout:
		return t.playScout(a)
	case PlayRedeploy:
		return t.playRedeploy(a)
	case PlayDeserter:
		return t.playDeserter(a)
	case PlayTraitor:
		return t.playTraitor(a)
	case Pass:
		return t.pass(a)
	case ClaimFlag:
		return t.claimFlag(a)
	case DoneClaiming:
		return t.doneClaiming(a)
	case DrawCard:
		return t.drawCard(a)
	case ScoutDrawCard:
		return t.scoutDraw(a)
	case ScoutReturnCard:
		return t.scoutReturn(a)
	case RedeployPick:
		return t.redeployPick(a)
	case RedeployPlaceToFlag:
		return t.redeployPlace(a)
	case RedeployDiscard:
		return t.redeployDiscard(a)
	case DeserterPick:
		return t.deserterPick(a)
	case TraitorPick:
		return t.traitorPick(a)
	case TraitorPlace:
		return t.traitorPlace(a)
	}
	return fmt.Errorf("%w: unsupported action type %T", ErrInvalidAction, action)
}

func (t *turn) toggleAutoClaim(ToggleAutoClaim) error {
	t.gs.AutoClaim = !t.gs.AutoClaim
	mode := "off"
	if t.gs.AutoClaim {
		mode = "on"
	}
	t.logf("Auto-claim turned %s", mode)
	return nil
}

func (t *turn) setPhase(p Phase) {
	t.gs.Phase = p
	t.gs.SubPhase = NoSubPhase
}

func (t *turn) enterSubPhase(sp SubPhase) {
	t.gs.Phase = PhaseSubPhase
	t.gs.SubPhase = sp
}

// enterClaimPhase is the single exit of every placement and sub-protocol.
// With auto-claim on, every provable flag is claimed and the turn moves on to
// the draw (or ends, when skipDraw is set or both decks are empty). Otherwise
// the player resolves claims by hand.
func (t *turn) enterClaimPhase(skipDraw bool) {
	if !t.gs.AutoClaim {
		t.setPhase(PhaseClaimFlags)
		if skipDraw {
			t.gs.SkipDraw = true
		}
		return
	}
	for _, fi := range ClaimableFlags(t.gs, t.seat) {
		t.claim(fi)
	}
	if skipDraw || t.gs.DecksEmpty() {
		t.advanceTurn()
		return
	}
	t.setPhase(PhaseDrawCard)
}

func (t *turn) claim(fi int) {
	t.gs.Flags[fi].ClaimedBy = t.seat
	t.logf("%s claims flag %d", t.name(), fi+1)
}

func (t *turn) advanceTurn() {
	t.gs.CurrentPlayer = opponentOf(t.gs.CurrentPlayer)
	t.gs.TurnNumber++
	t.setPhase(PhasePlayCard)
	t.gs.SkipDraw = false
	t.gs.Scout = nil
	t.gs.Redeploy = nil
	t.gs.Traitor = nil
}

func (t *turn) claimFlag(a ClaimFlag) error {
	fi := a.FlagIndex
	if fi < 0 || fi >= NumFlags {
		return invalid(a.Kind(), "flag index %d out of range", fi)
	}
	if t.gs.Flags[fi].Claimed() {
		return invalid(a.Kind(), "flag %d is already claimed", fi+1)
	}
	if !CanClaim(t.gs, t.seat, fi) {
		return invalid(a.Kind(), "cannot prove flag %d yet", fi+1)
	}
	t.claim(fi)
	return nil
}

func (t *turn) doneClaiming(DoneClaiming) error {
	t.logf("%s is done claiming", t.name())
	if t.gs.SkipDraw || t.gs.DecksEmpty() {
		t.advanceTurn()
		return nil
	}
	t.setPhase(PhaseDrawCard)
	return nil
}

func (t *turn) drawCard(a DrawCard) error {
	if err := t.drawFrom(a.Kind(), a.Deck); err != nil {
		return err
	}
	t.logf("%s draws from the %s deck", t.name(), a.Deck)
	t.advanceTurn()
	return nil
}

// drawFrom moves the top card of the named deck into the player's hand.
func (t *turn) drawFrom(kind ActionKind, deck DeckName) error {
	if deck != DeckTroop && deck != DeckTactics {
		return invalid(kind, "deck must be %q or %q", DeckTroop, DeckTactics)
	}
	pile := t.gs.deck(deck)
	if len(*pile) == 0 {
		return invalid(kind, "the %s deck is empty", deck)
	}
	p := t.player()
	p.Hand = append(p.Hand, popTop(pile))
	return nil
}
