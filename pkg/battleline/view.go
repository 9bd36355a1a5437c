package battleline

import "fmt"

// View is a GameState as seen by one player: the opponent's hand is reduced
// to card types and both decks to their sizes.
type View struct {
	Viewer            int            `json:"viewer"`
	PlayerIDs         [2]string      `json:"player_ids"`
	Players           [2]Player      `json:"players"`
	Flags             [NumFlags]Flag `json:"flags"`
	TroopDeck         int            `json:"troop_deck"`
	TacticsDeck       int            `json:"tactics_deck"`
	Discard           [2][]Card      `json:"discard"`
	CurrentPlayer     int            `json:"current_player"`
	TurnNumber        int            `json:"turn_number"`
	Phase             Phase          `json:"phase"`
	SubPhase          SubPhase       `json:"sub_phase"`
	Scout             *ScoutState    `json:"scout_state"`
	Redeploy          *PickedCard    `json:"redeploy_state"`
	Traitor           *PickedCard    `json:"traitor_state"`
	SkipDraw          bool           `json:"skip_draw"`
	AutoClaim         bool           `json:"auto_claim"`
	ConsecutivePasses int            `json:"consecutive_passes"`
	Winner            int            `json:"winner"`
}

// PlayerView projects gs for playerID.
func PlayerView(gs *GameState, playerID string) (*View, error) {
	seat, err := gs.PlayerIndex(playerID)
	if err != nil {
		return nil, err
	}
	c := gs.Clone()
	opp := &c.Players[opponentOf(seat)]
	hidden := make([]Card, len(opp.Hand))
	for i, card := range opp.Hand {
		hidden[i] = Card{Type: card.Type}
	}
	opp.Hand = hidden

	return &View{
		Viewer:            seat,
		PlayerIDs:         c.PlayerIDs,
		Players:           c.Players,
		Flags:             c.Flags,
		TroopDeck:         len(c.TroopDeck),
		TacticsDeck:       len(c.TacticsDeck),
		Discard:           c.Discard,
		CurrentPlayer:     c.CurrentPlayer,
		TurnNumber:        c.TurnNumber,
		Phase:             c.Phase,
		SubPhase:          c.SubPhase,
		Scout:             c.Scout,
		Redeploy:          c.Redeploy,
		Traitor:           c.Traitor,
		SkipDraw:          c.SkipDraw,
		AutoClaim:         c.AutoClaim,
		ConsecutivePasses: c.ConsecutivePasses,
		Winner:            c.Winner,
	}, nil
}

// WaitingFor returns the players expected to act: the current player, or
// nobody once the match is over.
func WaitingFor(gs *GameState) []string {
	if gs.Over() {
		return nil
	}
	return []string{gs.PlayerIDs[gs.CurrentPlayer]}
}

// PhaseInfo describes the current step for display.
type PhaseInfo struct {
	Phase         string `json:"phase"`
	Turn          int    `json:"turn"`
	CurrentPlayer string `json:"current_player"`
	Description   string `json:"description"`
}

var stepDescriptions = map[string]string{
	string(PhasePlayCard):    "Play a card",
	string(PhaseClaimFlags):  "Claim flags or done",
	string(PhaseDrawCard):    "Draw a card",
	string(SubScoutDraw):     "Scout, draw cards",
	string(SubScoutReturn):   "Scout, return cards",
	string(SubRedeployPick):  "Redeploy, pick a card",
	string(SubRedeployPlace): "Redeploy, place the card",
	string(SubDeserterPick):  "Deserter, pick an enemy card",
	string(SubTraitorPick):   "Traitor, pick an enemy troop",
	string(SubTraitorPlace):  "Traitor, place the stolen troop",
}

// GetPhaseInfo returns the active phase (or sub-phase) with a display string.
func GetPhaseInfo(gs *GameState) PhaseInfo {
	name := gs.Players[gs.CurrentPlayer].Name
	phase := string(gs.Phase)
	if gs.Phase == PhaseSubPhase && gs.SubPhase != NoSubPhase {
		phase = string(gs.SubPhase)
	}
	desc, ok := stepDescriptions[phase]
	if !ok {
		desc = phase
	}
	switch {
	case gs.Winner == Draw:
		desc = "Game drawn"
	case gs.Over():
		desc = fmt.Sprintf("%s won", gs.Players[gs.Winner].Name)
	default:
		desc = fmt.Sprintf("%s: %s", name, desc)
	}
	return PhaseInfo{Phase: phase, Turn: gs.TurnNumber, CurrentPlayer: name, Description: desc}
}
