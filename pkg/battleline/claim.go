package battleline

// AvailableTroops returns the troop cards not visible on any flag or in
// either discard pile, in canonical suit/rank order. Hands and decks are
// not subtracted: their contents are private, and the claim proof only
// reasons about public information.
func AvailableTroops(gs *GameState) []Card {
	seen := make(map[slot]bool)
	mark := func(cards []Card) {
		for _, c := range cards {
			if c.IsTroop() {
				seen[slot{c.Suit, c.Rank}] = true
			}
		}
	}
	for i := range gs.Flags {
		for _, side := range gs.Flags[i].Sides {
			mark(side)
		}
	}
	for _, pile := range gs.Discard {
		mark(pile)
	}

	var pool []Card
	for _, s := range AllSuits() {
		for r := MinRank; r <= MaxRank; r++ {
			if !seen[slot{s, r}] {
				pool = append(pool, Troop(s, r))
			}
		}
	}
	return pool
}

// CanClaim reports whether claimant can prove control of the flag right now.
//
// The claimant's side must be complete. Against a complete opposing side the
// stronger formation wins, and an exact tie goes to whoever completed first.
// Against an incomplete side every way the opponent could still fill it from
// the unaccounted-for troops is tried; the claim holds only if none of them
// beats the claimant. Ties favour the claimant there, since they necessarily
// completed first.
func CanClaim(gs *GameState, claimant, flagIdx int) bool {
	if flagIdx < 0 || flagIdx >= NumFlags {
		return false
	}
	flag := &gs.Flags[flagIdx]
	if flag.Claimed() || !flag.Complete(claimant) {
		return false
	}

	opp := opponentOf(claimant)
	fog := flag.HasEnvironment(Fog)
	mine := BestFormation(flag.Sides[claimant], fog)

	if flag.Complete(opp) {
		theirs := BestFormation(flag.Sides[opp], fog)
		switch mine.Compare(theirs) {
		case 1:
			return true
		case -1:
			return false
		}
		ct := flag.CompletionTurn
		if ct[claimant] == NoTurn {
			return false
		}
		return ct[opp] == NoTurn || ct[claimant] <= ct[opp]
	}

	needed := flag.Required() - len(flag.Sides[opp])
	pool := AvailableTroops(gs)
	if needed > len(pool) {
		// the opponent can never complete this side
		return true
	}

	hypo := make([]Card, len(flag.Sides[opp])+needed)
	copy(hypo, flag.Sides[opp])
	base := len(flag.Sides[opp])
	beaten := false
	forEachCombination(len(pool), needed, func(idx []int) bool {
		for k, i := range idx {
			hypo[base+k] = pool[i]
		}
		if BestFormation(hypo, fog).Beats(mine) {
			beaten = true
			return false
		}
		return true
	})
	return !beaten
}

// forEachCombination calls fn with every k-subset of {0..n-1} in
// lexicographic order until fn returns false.
func forEachCombination(n, k int, fn func(idx []int) bool) {
	if k < 0 || k > n {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		if !fn(idx) {
			return
		}
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// ClaimableFlags returns every flag the player could claim right now, in
// flag order.
func ClaimableFlags(gs *GameState, player int) []int {
	var out []int
	for i := range gs.Flags {
		if CanClaim(gs, player, i) {
			out = append(out, i)
		}
	}
	return out
}
