package battleline

// ValidActions enumerates every action playerID may submit right now. It is
// empty when the game is over or it is not the player's turn. Every returned
// action is accepted by ApplyAction against the same state.
func ValidActions(gs *GameState, playerID string) []Action {
	seat, err := gs.PlayerIndex(playerID)
	if err != nil || gs.Over() || gs.CurrentPlayer != seat {
		return nil
	}

	var actions []Action
	switch gs.Phase {
	case PhasePlayCard:
		actions = validPlays(gs, seat)
	case PhaseClaimFlags:
		for _, fi := range ClaimableFlags(gs, seat) {
			actions = append(actions, ClaimFlag{FlagIndex: fi})
		}
		actions = append(actions, DoneClaiming{})
	case PhaseDrawCard:
		for _, d := range availableDecks(gs) {
			actions = append(actions, DrawCard{Deck: d})
		}
	case PhaseSubPhase:
		actions = validSubPhaseActions(gs, seat)
	}
	return append(actions, ToggleAutoClaim{})
}

func availableDecks(gs *GameState) []DeckName {
	var out []DeckName
	if len(gs.TroopDeck) > 0 {
		out = append(out, DeckTroop)
	}
	if len(gs.TacticsDeck) > 0 {
		out = append(out, DeckTactics)
	}
	return out
}

func validPlays(gs *GameState, seat int) []Action {
	var actions []Action
	me, opp := &gs.Players[seat], &gs.Players[opponentOf(seat)]
	open := openFlags(gs, seat)
	tacticsOK := me.TacticsPlayed <= opp.TacticsPlayed

	for ci, c := range me.Hand {
		if c.IsTroop() {
			for _, fi := range open {
				actions = append(actions, PlayTroop{CardIndex: ci, FlagIndex: fi})
			}
			continue
		}
		if !tacticsOK {
			continue
		}
		switch {
		case c.IsWild():
			if c.IsLeader() && me.HasLeaderOnBoard {
				continue
			}
			for _, fi := range open {
				actions = append(actions, PlayMoraleTactic{CardIndex: ci, FlagIndex: fi})
			}
		case c.Subtype == SubtypeEnvironment:
			for fi := range gs.Flags {
				f := &gs.Flags[fi]
				if !f.Claimed() && !f.HasEnvironment(c.ID) {
					actions = append(actions, PlayEnvironment{CardIndex: ci, FlagIndex: fi})
				}
			}
		case c.ID == Scout:
			if !gs.DecksEmpty() {
				actions = append(actions, PlayScout{CardIndex: ci})
			}
		case c.ID == Redeploy:
			if hasCardsOnUnclaimed(gs, seat, false) {
				actions = append(actions, PlayRedeploy{CardIndex: ci})
			}
		case c.ID == Deserter:
			if hasCardsOnUnclaimed(gs, opponentOf(seat), false) {
				actions = append(actions, PlayDeserter{CardIndex: ci})
			}
		case c.ID == Traitor:
			if hasCardsOnUnclaimed(gs, opponentOf(seat), true) && len(open) > 0 {
				actions = append(actions, PlayTraitor{CardIndex: ci})
			}
		}
	}

	if canPass(gs, seat) {
		actions = append(actions, Pass{})
	}
	return actions
}

func validSubPhaseActions(gs *GameState, seat int) []Action {
	var actions []Action
	opp := opponentOf(seat)
	switch gs.SubPhase {
	case SubScoutDraw:
		for _, d := range availableDecks(gs) {
			actions = append(actions, ScoutDrawCard{Deck: d})
		}
	case SubScoutReturn:
		for ci, c := range gs.Players[seat].Hand {
			actions = append(actions, ScoutReturnCard{CardIndex: ci, Deck: deckFor(c)})
		}
	case SubRedeployPick:
		actions = flagPicks(gs, seat, false, func(fi, slot int) Action {
			return RedeployPick{FlagIndex: fi, SlotIndex: slot}
		})
	case SubRedeployPlace:
		actions = append(actions, RedeployDiscard{})
		from := -1
		if gs.Redeploy != nil {
			from = gs.Redeploy.FromFlag
		}
		for _, fi := range openFlags(gs, seat) {
			if fi != from {
				actions = append(actions, RedeployPlaceToFlag{FlagIndex: fi})
			}
		}
	case SubDeserterPick:
		actions = flagPicks(gs, opp, false, func(fi, slot int) Action {
			return DeserterPick{FlagIndex: fi, SlotIndex: slot}
		})
	case SubTraitorPick:
		actions = flagPicks(gs, opp, true, func(fi, slot int) Action {
			return TraitorPick{FlagIndex: fi, SlotIndex: slot}
		})
	case SubTraitorPlace:
		for _, fi := range openFlags(gs, seat) {
			actions = append(actions, TraitorPlace{FlagIndex: fi})
		}
	}
	return actions
}

// flagPicks builds one action per movable card on side across unclaimed flags.
func flagPicks(gs *GameState, side int, troopsOnly bool, mk func(fi, slot int) Action) []Action {
	var actions []Action
	for fi := range gs.Flags {
		f := &gs.Flags[fi]
		if f.Claimed() {
			continue
		}
		for slot, c := range f.Sides[side] {
			if c.IsTroop() || (!troopsOnly && c.Deployable()) {
				actions = append(actions, mk(fi, slot))
			}
		}
	}
	return actions
}
