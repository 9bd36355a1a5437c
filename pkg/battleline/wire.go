package battleline

import "fmt"

// ActionInput is the flat JSON shape clients send and ValidActions are
// published in. Only the fields the kind needs are set.
type ActionInput struct {
	Kind            ActionKind `json:"kind"`
	CardIndex       *int       `json:"card_index,omitempty"`
	FlagIndex       *int       `json:"flag_index,omitempty"`
	CardIndexAtFlag *int       `json:"card_index_at_flag,omitempty"`
	Deck            DeckName   `json:"deck,omitempty"`
}

// ParseAction converts wire input into a typed Action.
func ParseAction(in ActionInput) (Action, error) {
	need := func(name string, v *int) (int, error) {
		if v == nil {
			return 0, invalid(in.Kind, "%s is required", name)
		}
		return *v, nil
	}
	card := func() (int, error) { return need("card_index", in.CardIndex) }
	flag := func() (int, error) { return need("flag_index", in.FlagIndex) }
	pick := func() (fi, slot int, err error) {
		if fi, err = flag(); err != nil {
			return
		}
		slot, err = need("card_index_at_flag", in.CardIndexAtFlag)
		return
	}

	switch in.Kind {
	case KindPlayTroop, KindPlayMoraleTactic, KindPlayEnvironment:
		ci, err := card()
		if err != nil {
			return nil, err
		}
		fi, err := flag()
		if err != nil {
			return nil, err
		}
		switch in.Kind {
		case KindPlayTroop:
			return PlayTroop{CardIndex: ci, FlagIndex: fi}, nil
		case KindPlayMoraleTactic:
			return PlayMoraleTactic{CardIndex: ci, FlagIndex: fi}, nil
		}
		return PlayEnvironment{CardIndex: ci, FlagIndex: fi}, nil

	case KindPlayScout, KindPlayRedeploy, KindPlayDeserter, KindPlayTraitor:
		ci, err := card()
		if err != nil {
			return nil, err
		}
		switch in.Kind {
		case KindPlayScout:
			return PlayScout{CardIndex: ci}, nil
		case KindPlayRedeploy:
			return PlayRedeploy{CardIndex: ci}, nil
		case KindPlayDeserter:
			return PlayDeserter{CardIndex: ci}, nil
		}
		return PlayTraitor{CardIndex: ci}, nil

	case KindClaimFlag, KindRedeployPlaceToFlag, KindTraitorPlace:
		fi, err := flag()
		if err != nil {
			return nil, err
		}
		switch in.Kind {
		case KindClaimFlag:
			return ClaimFlag{FlagIndex: fi}, nil
		case KindRedeployPlaceToFlag:
			return RedeployPlaceToFlag{FlagIndex: fi}, nil
		}
		return TraitorPlace{FlagIndex: fi}, nil

	case KindRedeployPick, KindDeserterPick, KindTraitorPick:
		fi, slot, err := pick()
		if err != nil {
			return nil, err
		}
		switch in.Kind {
		case KindRedeployPick:
			return RedeployPick{FlagIndex: fi, SlotIndex: slot}, nil
		case KindDeserterPick:
			return DeserterPick{FlagIndex: fi, SlotIndex: slot}, nil
		}
		return TraitorPick{FlagIndex: fi, SlotIndex: slot}, nil

	case KindDrawCard:
		return DrawCard{Deck: in.Deck}, nil
	case KindScoutDrawCard:
		return ScoutDrawCard{Deck: in.Deck}, nil
	case KindScoutReturnCard:
		ci, err := card()
		if err != nil {
			return nil, err
		}
		return ScoutReturnCard{CardIndex: ci, Deck: in.Deck}, nil

	case KindPass:
		return Pass{}, nil
	case KindDoneClaiming:
		return DoneClaiming{}, nil
	case KindRedeployDiscard:
		return RedeployDiscard{}, nil
	case KindToggleAutoClaim:
		return ToggleAutoClaim{}, nil
	}
	return nil, fmt.Errorf("%w: unknown action kind %q", ErrInvalidAction, in.Kind)
}

// EncodeAction is the inverse of ParseAction.
func EncodeAction(a Action) ActionInput {
	in := ActionInput{Kind: a.Kind()}
	switch a := a.(type) {
	case PlayTroop:
		in.CardIndex, in.FlagIndex = ptr(a.CardIndex), ptr(a.FlagIndex)
	case PlayMoraleTactic:
		in.CardIndex, in.FlagIndex = ptr(a.CardIndex), ptr(a.FlagIndex)
	case PlayEnvironment:
		in.CardIndex, in.FlagIndex = ptr(a.CardIndex), ptr(a.FlagIndex)
	case PlayScout:
		in.CardIndex = ptr(a.CardIndex)
	case PlayRedeploy:
		in.CardIndex = ptr(a.CardIndex)
	case PlayDeserter:
		in.CardIndex = ptr(a.CardIndex)
	case PlayTraitor:
		in.CardIndex = ptr(a.CardIndex)
	case ClaimFlag:
		in.FlagIndex = ptr(a.FlagIndex)
	case RedeployPlaceToFlag:
		in.FlagIndex = ptr(a.FlagIndex)
	case TraitorPlace:
		in.FlagIndex = ptr(a.FlagIndex)
	case RedeployPick:
		in.FlagIndex, in.CardIndexAtFlag = ptr(a.FlagIndex), ptr(a.SlotIndex)
	case DeserterPick:
		in.FlagIndex, in.CardIndexAtFlag = ptr(a.FlagIndex), ptr(a.SlotIndex)
	case TraitorPick:
		in.FlagIndex, in.CardIndexAtFlag = ptr(a.FlagIndex), ptr(a.SlotIndex)
	case DrawCard:
		in.Deck = a.Deck
	case ScoutDrawCard:
		in.Deck = a.Deck
	case ScoutReturnCard:
		in.CardIndex, in.Deck = ptr(a.CardIndex), a.Deck
	}
	return in
}

func ptr(v int) *int { return &v }
