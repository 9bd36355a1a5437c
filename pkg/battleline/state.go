package battleline

import (
	"fmt"
	"math/rand"
	"slices"
	"time"
)

const (
	NumFlags     = 9
	HandSize     = 7
	BaseRequired = 3
	MudRequired  = 4
)

// Sentinels for optional player indexes and turn numbers.
const (
	Unclaimed = -1
	NoTurn    = -1
	NoWinner  = -1
)

// Draw is stored in GameState.Winner when the match ends without a victor.
const Draw = 2

// Phase is the top-level turn phase.
type Phase string

const (
	PhasePlayCard   Phase = "play_card"
	PhaseClaimFlags Phase = "claim_flags"
	PhaseDrawCard   Phase = "draw_card"
	PhaseSubPhase   Phase = "sub_phase"
)

// SubPhase is the active step of a guile sub-protocol. Only meaningful
// while Phase is PhaseSubPhase.
type SubPhase string

const (
	NoSubPhase       SubPhase = ""
	SubScoutDraw     SubPhase = "scout_draw"
	SubScoutReturn   SubPhase = "scout_return"
	SubRedeployPick  SubPhase = "redeploy_pick"
	SubRedeployPlace SubPhase = "redeploy_place"
	SubDeserterPick  SubPhase = "deserter_pick"
	SubTraitorPick   SubPhase = "traitor_pick"
	SubTraitorPlace  SubPhase = "traitor_place"
)

// Flag is one contested position on the line.
type Flag struct {
	Sides          [2][]Card  `json:"slots"`
	Environment    []TacticID `json:"environment"`
	ClaimedBy      int        `json:"claimed_by"`
	CompletionTurn [2]int     `json:"completion_turn"`
}

func newFlag() Flag {
	return Flag{
		Sides:          [2][]Card{{}, {}},
		Environment:    []TacticID{},
		ClaimedBy:      Unclaimed,
		CompletionTurn: [2]int{NoTurn, NoTurn},
	}
}

// Claimed reports whether either player owns the flag.
func (f *Flag) Claimed() bool { return f.ClaimedBy != Unclaimed }

// HasEnvironment reports whether the modifier is active on the flag.
func (f *Flag) HasEnvironment(id TacticID) bool {
	return slices.Contains(f.Environment, id)
}

// Required returns the number of cards each side needs to be complete.
func (f *Flag) Required() int {
	if f.HasEnvironment(Mud) {
		return MudRequired
	}
	return BaseRequired
}

// Complete reports whether the given side holds the required card count.
func (f *Flag) Complete(side int) bool {
	return len(f.Sides[side]) >= f.Required()
}

// Open reports whether the given side can accept another card.
func (f *Flag) Open(side int) bool {
	return !f.Claimed() && !f.Complete(side)
}

// markComplete records the completion turn the first time a side fills up.
func (f *Flag) markComplete(side, turn int) {
	if f.Complete(side) && f.CompletionTurn[side] == NoTurn {
		f.CompletionTurn[side] = turn
	}
}

// clearIncomplete drops a stale completion turn once a side falls below
// the required count.
func (f *Flag) clearIncomplete(side int) {
	if !f.Complete(side) {
		f.CompletionTurn[side] = NoTurn
	}
}

func (f *Flag) clone() Flag {
	c := Flag{
		Environment:    slices.Clone(f.Environment),
		ClaimedBy:      f.ClaimedBy,
		CompletionTurn: f.CompletionTurn,
	}
	for side := range f.Sides {
		c.Sides[side] = slices.Clone(f.Sides[side])
	}
	return c
}

// Player is one participant's private and public bookkeeping.
type Player struct {
	Index            int    `json:"index"`
	ID               string `json:"player_id"`
	Name             string `json:"name"`
	Hand             []Card `json:"hand"`
	TacticsPlayed    int    `json:"tactics_played"`
	HasLeaderOnBoard bool   `json:"has_leader_on_board"`
}

// ScoutState tracks the remaining steps of a Scout sub-protocol.
type ScoutState struct {
	DrawsRemaining   int `json:"draws_remaining"`
	ReturnsRemaining int `json:"returns_remaining"`
}

// PickedCard is a card lifted off a flag and awaiting placement.
type PickedCard struct {
	Card     Card `json:"picked_card"`
	FromFlag int  `json:"from_flag"`
}

// GameState is a complete snapshot of one match. It is treated as a value:
// ApplyAction never mutates its input and returns a fresh state instead.
type GameState struct {
	PlayerIDs         [2]string      `json:"player_ids"`
	Players           [2]Player      `json:"players"`
	Flags             [NumFlags]Flag `json:"flags"`
	TroopDeck         []Card         `json:"troop_deck"`
	TacticsDeck       []Card         `json:"tactics_deck"`
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

// NewInitialState shuffles both decks with rng, deals an opening hand of
// troops to each player and lays out nine empty flags. A nil rng is
// replaced with a freshly seeded source; pass an explicit one per match to
// keep matches independent and reproducible.
func NewInitialState(playerIDs, playerNames []string, rng *rand.Rand) (*GameState, error) {
	if len(playerIDs) != 2 {
		return nil, fmt.Errorf("battle line requires exactly 2 players, got %d", len(playerIDs))
	}
	if len(playerNames) != len(playerIDs) {
		return nil, fmt.Errorf("got %d player names for %d players", len(playerNames), len(playerIDs))
	}
	if playerIDs[0] == playerIDs[1] {
		return nil, fmt.Errorf("player ids must be distinct")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	gs := &GameState{
		TroopDeck:     NewTroopDeck(rng),
		TacticsDeck:   NewTacticsDeck(rng),
		Discard:       [2][]Card{{}, {}},
		CurrentPlayer: 0,
		Phase:         PhasePlayCard,
		AutoClaim:     true,
		Winner:        NoWinner,
	}
	for i := range gs.Players {
		gs.PlayerIDs[i] = playerIDs[i]
		gs.Players[i] = Player{
			Index: i,
			ID:    playerIDs[i],
			Name:  playerNames[i],
			Hand:  make([]Card, 0, HandSize+3),
		}
		for range HandSize {
			gs.Players[i].Hand = append(gs.Players[i].Hand, popTop(&gs.TroopDeck))
		}
	}
	for i := range gs.Flags {
		gs.Flags[i] = newFlag()
	}
	return gs, nil
}

// Clone returns a deep copy of the GameState. Mutations to the clone do
// not affect the original.
func (gs *GameState) Clone() *GameState {
	c := *gs
	for i := range gs.Players {
		c.Players[i].Hand = slices.Clone(gs.Players[i].Hand)
	}
	for i := range gs.Flags {
		c.Flags[i] = gs.Flags[i].clone()
	}
	c.TroopDeck = slices.Clone(gs.TroopDeck)
	c.TacticsDeck = slices.Clone(gs.TacticsDeck)
	for i := range gs.Discard {
		c.Discard[i] = slices.Clone(gs.Discard[i])
	}
	if gs.Scout != nil {
		s := *gs.Scout
		c.Scout = &s
	}
	if gs.Redeploy != nil {
		r := *gs.Redeploy
		c.Redeploy = &r
	}
	if gs.Traitor != nil {
		t := *gs.Traitor
		c.Traitor = &t
	}
	return &c
}

// PlayerIndex returns the seat of the given player ID.
func (gs *GameState) PlayerIndex(playerID string) (int, error) {
	for i, id := range gs.PlayerIDs {
		if id == playerID {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
}

// Over reports whether the match has a winner or ended in a draw.
func (gs *GameState) Over() bool { return gs.Winner != NoWinner }

// DecksEmpty reports whether both draw piles are exhausted.
func (gs *GameState) DecksEmpty() bool {
	return len(gs.TroopDeck) == 0 && len(gs.TacticsDeck) == 0
}

// deck returns a pointer to the named draw pile.
func (gs *GameState) deck(name DeckName) *[]Card {
	if name == DeckTactics {
		return &gs.TacticsDeck
	}
	return &gs.TroopDeck
}

// ClaimedCount returns the number of flags owned by player.
func (gs *GameState) ClaimedCount(player int) int {
	n := 0
	for i := range gs.Flags {
		if gs.Flags[i].ClaimedBy == player {
			n++
		}
	}
	return n
}

func popTop(deck *[]Card) Card {
	d := *deck
	c := d[len(d)-1]
	*deck = d[:len(d)-1]
	return c
}

func opponentOf(player int) int { return 1 - player }
