package bot

import (
	"math"

	"github.com/brandonr49/board-game-engine/pkg/battleline"
)

// HeuristicStrategy scores every valid action and plays the best one. It
// claims every provable flag, builds toward the strongest formation per
// flag, prefers troops over tactics and returns its weakest cards when
// scouting. Ties go to the first action in ValidActions order.
type HeuristicStrategy struct{}

func (*HeuristicStrategy) Name() string { return DifficultyHeuristic }

func (*HeuristicStrategy) ChooseAction(gs *battleline.GameState, seat int) battleline.Action {
	var best battleline.Action
	bestScore := math.MinInt
	for _, a := range candidates(gs, seat) {
		if s := scoreAction(gs, seat, a); s > bestScore {
			best, bestScore = a, s
		}
	}
	return best
}

// Weights used by scoreAction. Troop placements land roughly in 20..150.
const (
	claimScore      = 1000
	moralePenalty   = 15
	losingPenalty   = 60
	passScore       = -100
	tacticCardValue = 11
)

func scoreAction(gs *battleline.GameState, seat int, a battleline.Action) int {
	me := &gs.Players[seat]
	opp := 1 - seat

	switch a := a.(type) {
	case battleline.ClaimFlag:
		return claimScore
	case battleline.DoneClaiming:
		return 0
	case battleline.DrawCard:
		if a.Deck == battleline.DeckTroop {
			return 10
		}
		return 5
	case battleline.ScoutDrawCard:
		if a.Deck == battleline.DeckTroop {
			return 10
		}
		return 8
	case battleline.ScoutReturnCard:
		return 100 - cardValue(me.Hand[a.CardIndex])
	case battleline.PlayTroop:
		return placementScore(gs, seat, me.Hand[a.CardIndex], a.FlagIndex)
	case battleline.PlayMoraleTactic:
		return placementScore(gs, seat, me.Hand[a.CardIndex], a.FlagIndex) - moralePenalty
	case battleline.PlayEnvironment:
		return environmentScore(gs, seat, me.Hand[a.CardIndex], a.FlagIndex)
	case battleline.PlayTraitor:
		return 4
	case battleline.PlayDeserter:
		return 3
	case battleline.PlayScout:
		return 2
	case battleline.PlayRedeploy:
		return 1
	case battleline.Pass:
		return passScore
	case battleline.RedeployPick:
		return cardValue(gs.Flags[a.FlagIndex].Sides[seat][a.SlotIndex])
	case battleline.RedeployPlaceToFlag:
		if gs.Redeploy == nil {
			return 0
		}
		return placementScore(gs, seat, gs.Redeploy.Card, a.FlagIndex)
	case battleline.RedeployDiscard:
		return 0
	case battleline.DeserterPick:
		return cardValue(gs.Flags[a.FlagIndex].Sides[opp][a.SlotIndex])
	case battleline.TraitorPick:
		return cardValue(gs.Flags[a.FlagIndex].Sides[opp][a.SlotIndex])
	case battleline.TraitorPlace:
		if gs.Traitor == nil {
			return 0
		}
		return placementScore(gs, seat, gs.Traitor.Card, a.FlagIndex)
	}
	return math.MinInt / 2
}

// placementScore rates the formation the side would hold after adding c.
// Completing a side that already loses to a finished opposing side is
// penalised.
func placementScore(gs *battleline.GameState, seat int, c battleline.Card, fi int) int {
	f := &gs.Flags[fi]
	fog := f.HasEnvironment(battleline.Fog)
	side := append(append([]battleline.Card(nil), f.Sides[seat]...), c)
	form := battleline.BestFormation(side, fog)
	score := int(form.Strength)*20 + form.Sum

	opp := 1 - seat
	if len(side) == f.Required() && f.Complete(opp) {
		if battleline.BestFormation(f.Sides[opp], fog).Beats(form) {
			score -= losingPenalty
		}
	}
	return score
}

// environmentScore plays fog where the opponent's shape beats ours and mud
// where we still have room to catch up. Anything else scores low.
func environmentScore(gs *battleline.GameState, seat int, c battleline.Card, fi int) int {
	f := &gs.Flags[fi]
	opp := 1 - seat
	mine := battleline.BestFormation(f.Sides[seat], false)
	theirs := battleline.BestFormation(f.Sides[opp], false)
	if len(f.Sides[opp]) == 0 || !theirs.Beats(mine) {
		return -1
	}
	switch c.ID {
	case battleline.Fog:
		if theirs.Strength > mine.Strength {
			return 8
		}
	case battleline.Mud:
		if !f.Complete(seat) {
			return 6
		}
	}
	return -1
}

func cardValue(c battleline.Card) int {
	if c.IsTroop() {
		return c.Rank
	}
	return tacticCardValue
}
