package battleline

const (
	EnvelopmentFlags  = 5
	BreakthroughFlags = 3
)

// VictoryKind names the shape that won the match.
type VictoryKind string

const (
	Envelopment  VictoryKind = "envelopment"
	Breakthrough VictoryKind = "breakthrough"
)

// CheckWinner scans the claimed flags for a victory shape. Players are
// checked in seat order and Envelopment before Breakthrough.
func CheckWinner(gs *GameState) (player int, kind VictoryKind, ok bool) {
	for p := range gs.Players {
		if gs.ClaimedCount(p) >= EnvelopmentFlags {
			return p, Envelopment, true
		}
		run := 0
		for i := range gs.Flags {
			if gs.Flags[i].ClaimedBy != p {
				run = 0
				continue
			}
			run++
			if run >= BreakthroughFlags {
				return p, Breakthrough, true
			}
		}
	}
	return NoWinner, "", false
}
