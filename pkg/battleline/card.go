package battleline

import (
	"fmt"
	"math/rand"
)

// Suit is the colour of a troop card.
type Suit string

const (
	Red    Suit = "red"
	Blue   Suit = "blue"
	Yellow Suit = "yellow"
	Green  Suit = "green"
	Purple Suit = "purple"
	Orange Suit = "orange"
)

// AllSuits returns the six troop suits in canonical order.
func AllSuits() []Suit {
	return []Suit{Red, Blue, Yellow, Green, Purple, Orange}
}

const (
	MinRank = 1
	MaxRank = 10
)

// CardType distinguishes troop cards from tactics cards.
type CardType string

const (
	TroopCard   CardType = "troop"
	TacticsCard CardType = "tactics"
)

// TacticSubtype groups tactics cards by how they are played.
type TacticSubtype string

const (
	SubtypeLeader      TacticSubtype = "leader"
	SubtypeMorale      TacticSubtype = "morale"
	SubtypeEnvironment TacticSubtype = "environment"
	SubtypeGuile       TacticSubtype = "guile"
)

// TacticID identifies one of the ten unique tactics cards.
type TacticID string

const (
	Alexander        TacticID = "alexander"
	Darius           TacticID = "darius"
	CompanionCavalry TacticID = "companion_cavalry"
	ShieldBearers    TacticID = "shield_bearers"
	Fog              TacticID = "fog"
	Mud              TacticID = "mud"
	Scout            TacticID = "scout"
	Redeploy         TacticID = "redeploy"
	Deserter         TacticID = "deserter"
	Traitor          TacticID = "traitor"
)

type tacticInfo struct {
	subtype TacticSubtype
	name    string
}

var tactics = map[TacticID]tacticInfo{
	Alexander:        {SubtypeLeader, "Alexander"},
	Darius:           {SubtypeLeader, "Darius"},
	CompanionCavalry: {SubtypeMorale, "Companion Cavalry"},
	ShieldBearers:    {SubtypeMorale, "Shield Bearers"},
	Fog:              {SubtypeEnvironment, "Fog"},
	Mud:              {SubtypeEnvironment, "Mud"},
	Scout:            {SubtypeGuile, "Scout"},
	Redeploy:         {SubtypeGuile, "Redeploy"},
	Deserter:         {SubtypeGuile, "Deserter"},
	Traitor:          {SubtypeGuile, "Traitor"},
}

// AllTactics returns the tactics identifiers in canonical order.
func AllTactics() []TacticID {
	return []TacticID{
		Alexander, Darius, CompanionCavalry, ShieldBearers,
		Fog, Mud,
		Scout, Redeploy, Deserter, Traitor,
	}
}

// Card is either a troop card (Suit and Rank set) or a tactics card
// (ID, Subtype and Name set). Type tells which.
type Card struct {
	Type    CardType      `json:"type"`
	Suit    Suit          `json:"color,omitempty"`
	Rank    int           `json:"value,omitempty"`
	ID      TacticID      `json:"id,omitempty"`
	Subtype TacticSubtype `json:"subtype,omitempty"`
	Name    string        `json:"name,omitempty"`
}

// Troop returns the troop card of the given suit and rank.
func Troop(s Suit, rank int) Card {
	return Card{Type: TroopCard, Suit: s, Rank: rank}
}

// Tactic returns the tactics card with the given identifier.
// Unknown identifiers yield a tactics card with no subtype.
func Tactic(id TacticID) Card {
	info := tactics[id]
	return Card{Type: TacticsCard, ID: id, Subtype: info.subtype, Name: info.name}
}

// IsTroop reports whether c is a troop card.
func (c Card) IsTroop() bool { return c.Type == TroopCard }

// IsWild reports whether c stands in for a troop when placed on a flag.
func (c Card) IsWild() bool {
	return c.Type == TacticsCard && (c.Subtype == SubtypeLeader || c.Subtype == SubtypeMorale)
}

// IsLeader reports whether c is a leader card.
func (c Card) IsLeader() bool {
	return c.Type == TacticsCard && c.Subtype == SubtypeLeader
}

// Deployable reports whether c can occupy a slot on a flag side.
func (c Card) Deployable() bool {
	return c.IsTroop() || c.IsWild()
}

func (c Card) String() string {
	if c.IsTroop() {
		return fmt.Sprintf("%s %d", c.Suit, c.Rank)
	}
	if c.Name != "" {
		return c.Name
	}
	if c.ID != "" {
		return string(c.ID)
	}
	return "unknown"
}

// NewTroopDeck returns the 60 troop cards shuffled with rng.
func NewTroopDeck(rng *rand.Rand) []Card {
	deck := make([]Card, 0, len(AllSuits())*MaxRank)
	for _, s := range AllSuits() {
		for r := MinRank; r <= MaxRank; r++ {
			deck = append(deck, Troop(s, r))
		}
	}
	shuffle(rng, deck)
	return deck
}

// NewTacticsDeck returns the 10 tactics cards shuffled with rng.
func NewTacticsDeck(rng *rand.Rand) []Card {
	deck := make([]Card, 0, len(tactics))
	for _, id := range AllTactics() {
		deck = append(deck, Tactic(id))
	}
	shuffle(rng, deck)
	return deck
}

func shuffle(rng *rand.Rand, deck []Card) {
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
}
