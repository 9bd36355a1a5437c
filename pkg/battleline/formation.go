package battleline

import "slices"

// Strength is the shape class of a formation. Higher values are stronger.
type Strength int

const (
	Host Strength = iota + 1
	Skirmish
	Battalion
	Phalanx
	Wedge
)

func (s Strength) String() string {
	switch s {
	case Host:
		return "host"
	case Skirmish:
		return "skirmish"
	case Battalion:
		return "battalion"
	case Phalanx:
		return "phalanx"
	case Wedge:
		return "wedge"
	default:
		return "unknown"
	}
}

// Formation is the evaluated strength of one flag side.
type Formation struct {
	Strength Strength `json:"strength"`
	Sum      int      `json:"sum"`
}

// Compare orders formations by strength, then by sum. It returns -1, 0 or +1.
func (f Formation) Compare(o Formation) int {
	switch {
	case f.Strength != o.Strength:
		if f.Strength > o.Strength {
			return 1
		}
		return -1
	case f.Sum > o.Sum:
		return 1
	case f.Sum < o.Sum:
		return -1
	}
	return 0
}

// Beats reports whether f is strictly stronger than o.
func (f Formation) Beats(o Formation) bool { return f.Compare(o) > 0 }

// slot is a concrete (suit, rank) pair used during classification.
type slot struct {
	suit Suit
	rank int
}

// wildOptions lists every (suit, rank) a wildcard may stand in for.
func wildOptions(c Card) []slot {
	var lo, hi int
	switch c.ID {
	case Alexander, Darius:
		lo, hi = MinRank, MaxRank
	case CompanionCavalry:
		lo, hi = 8, 8
	case ShieldBearers:
		lo, hi = 1, 3
	default:
		return nil
	}
	opts := make([]slot, 0, len(AllSuits())*(hi-lo+1))
	for _, s := range AllSuits() {
		for r := lo; r <= hi; r++ {
			opts = append(opts, slot{s, r})
		}
	}
	return opts
}

// BestFormation returns the strongest formation the cards can represent.
// Wildcards are tried in every legal (suit, rank) combination. With fog
// the shape is ignored and only the sum counts. An empty side is (Host, 0).
func BestFormation(cards []Card, fog bool) Formation {
	if len(cards) == 0 {
		return Formation{Strength: Host}
	}

	fixed := make([]slot, 0, len(cards))
	var wilds [][]slot
	for _, c := range cards {
		if c.IsTroop() {
			fixed = append(fixed, slot{c.Suit, c.Rank})
			continue
		}
		if opts := wildOptions(c); len(opts) > 0 {
			wilds = append(wilds, opts)
		}
	}

	if len(wilds) == 0 {
		return classify(fixed, fog)
	}

	best := Formation{Strength: Host}
	hand := make([]slot, len(fixed)+len(wilds))
	copy(hand, fixed)
	// odometer over the cartesian product of wildcard options
	idx := make([]int, len(wilds))
	for {
		for w, i := range idx {
			hand[len(fixed)+w] = wilds[w][i]
		}
		if f := classify(hand, fog); f.Beats(best) {
			best = f
		}

		w := len(idx) - 1
		for ; w >= 0; w-- {
			idx[w]++
			if idx[w] < len(wilds[w]) {
				break
			}
			idx[w] = 0
		}
		if w < 0 {
			return best
		}
	}
}

func classify(hand []slot, fog bool) Formation {
	sum := 0
	sameSuit, sameRank := true, true
	ranks := make([]int, len(hand))
	for i, s := range hand {
		sum += s.rank
		ranks[i] = s.rank
		if s.suit != hand[0].suit {
			sameSuit = false
		}
		if s.rank != hand[0].rank {
			sameRank = false
		}
	}
	if fog {
		return Formation{Host, sum}
	}

	slices.Sort(ranks)
	consecutive := true
	for i := 1; i < len(ranks); i++ {
		if ranks[i] != ranks[i-1]+1 {
			consecutive = false
			break
		}
	}

	switch {
	case sameSuit && consecutive:
		return Formation{Wedge, sum}
	case sameRank:
		return Formation{Phalanx, sum}
	case sameSuit:
		return Formation{Battalion, sum}
	case consecutive:
		return Formation{Skirmish, sum}
	}
	return Formation{Host, sum}
}
