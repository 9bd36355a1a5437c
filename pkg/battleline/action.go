package battleline

// ActionKind is the wire tag of an action.
type ActionKind string

const (
	KindPlayTroop           ActionKind = "play_troop"
	KindPlayMoraleTactic    ActionKind = "play_morale_tactic"
	KindPlayEnvironment     ActionKind = "play_environment"
	KindPlayScout           ActionKind = "play_scout"
	KindPlayRedeploy        ActionKind = "play_redeploy"
	KindPlayDeserter        ActionKind = "play_deserter"
	KindPlayTraitor         ActionKind = "play_traitor"
	KindPass                ActionKind = "pass"
	KindClaimFlag           ActionKind = "claim_flag"
	KindDoneClaiming        ActionKind = "done_claiming"
	KindDrawCard            ActionKind = "draw_card"
	KindScoutDrawCard       ActionKind = "scout_draw_card"
	KindScoutReturnCard     ActionKind = "scout_return_card"
	KindRedeployPick        ActionKind = "redeploy_pick"
	KindRedeployPlaceToFlag ActionKind = "redeploy_place_to_flag"
	KindRedeployDiscard     ActionKind = "redeploy_discard"
	KindDeserterPick        ActionKind = "deserter_pick"
	KindTraitorPick         ActionKind = "traitor_pick"
	KindTraitorPlace        ActionKind = "traitor_place"
	KindToggleAutoClaim     ActionKind = "toggle_auto_claim"
)

// IsCardPlay reports whether the kind puts a card from hand into play.
// Only these interrupt a run of consecutive passes.
func (k ActionKind) IsCardPlay() bool {
	switch k {
	case KindPlayTroop, KindPlayMoraleTactic, KindPlayEnvironment,
		KindPlayScout, KindPlayRedeploy, KindPlayDeserter, KindPlayTraitor:
		return true
	}
	return false
}

// DeckName selects one of the two draw piles.
type DeckName string

const (
	DeckTroop   DeckName = "troop"
	DeckTactics DeckName = "tactics"
)

// deckFor returns the pile a card belongs to.
func deckFor(c Card) DeckName {
	if c.IsTroop() {
		return DeckTroop
	}
	return DeckTactics
}

// Action is one player decision. The concrete types below form a closed set;
// ApplyAction switches over all of them.
type Action interface {
	Kind() ActionKind
}

type PlayTroop struct {
	CardIndex int
	FlagIndex int
}

// PlayMoraleTactic places a leader or morale card on the player's side of a flag.
type PlayMoraleTactic struct {
	CardIndex int
	FlagIndex int
}

// PlayEnvironment attaches fog or mud to a flag.
type PlayEnvironment struct {
	CardIndex int
	FlagIndex int
}

type PlayScout struct{ CardIndex int }

type PlayRedeploy struct{ CardIndex int }

type PlayDeserter struct{ CardIndex int }

type PlayTraitor struct{ CardIndex int }

type Pass struct{}

type ClaimFlag struct{ FlagIndex int }

type DoneClaiming struct{}

type DrawCard struct{ Deck DeckName }

type ScoutDrawCard struct{ Deck DeckName }

// ScoutReturnCard puts a hand card back on top of its deck. An empty Deck
// means the card's own deck.
type ScoutReturnCard struct {
	CardIndex int
	Deck      DeckName
}

// RedeployPick lifts one of the player's own cards off an unclaimed flag.
// SlotIndex is the card's position on that flag side.
type RedeployPick struct {
	FlagIndex int
	SlotIndex int
}

type RedeployPlaceToFlag struct{ FlagIndex int }

type RedeployDiscard struct{}

// DeserterPick removes an opposing card from an unclaimed flag.
type DeserterPick struct {
	FlagIndex int
	SlotIndex int
}

// TraitorPick steals an opposing troop from an unclaimed flag.
type TraitorPick struct {
	FlagIndex int
	SlotIndex int
}

type TraitorPlace struct{ FlagIndex int }

type ToggleAutoClaim struct{}

func (PlayTroop) Kind() ActionKind           { return KindPlayTroop }
func (PlayMoraleTactic) Kind() ActionKind    { return KindPlayMoraleTactic }
func (PlayEnvironment) Kind() ActionKind     { return KindPlayEnvironment }
func (PlayScout) Kind() ActionKind           { return KindPlayScout }
func (PlayRedeploy) Kind() ActionKind        { return KindPlayRedeploy }
func (PlayDeserter) Kind() ActionKind        { return KindPlayDeserter }
func (PlayTraitor) Kind() ActionKind         { return KindPlayTraitor }
func (Pass) Kind() ActionKind                { return KindPass }
func (ClaimFlag) Kind() ActionKind           { return KindClaimFlag }
func (DoneClaiming) Kind() ActionKind        { return KindDoneClaiming }
func (DrawCard) Kind() ActionKind            { return KindDrawCard }
func (ScoutDrawCard) Kind() ActionKind       { return KindScoutDrawCard }
func (ScoutReturnCard) Kind() ActionKind     { return KindScoutReturnCard }
func (RedeployPick) Kind() ActionKind        { return KindRedeployPick }
func (RedeployPlaceToFlag) Kind() ActionKind { return KindRedeployPlaceToFlag }
func (RedeployDiscard) Kind() ActionKind     { return KindRedeployDiscard }
func (DeserterPick) Kind() ActionKind        { return KindDeserterPick }
func (TraitorPick) Kind() ActionKind         { return KindTraitorPick }
func (TraitorPlace) Kind() ActionKind        { return KindTraitorPlace }
func (ToggleAutoClaim) Kind() ActionKind     { return KindToggleAutoClaim }
