package game

// State is the phase a session is currently in. Sessions walk the states
// strictly in order, with two back-edges: TurnEnd returns to TurnSetup for
// the next drawer of the same round, and RoundEnd returns to RoundSetup for
// the next round.
type State int

const (
	StateGameStart State = iota
	StateRoundSetup
	StateTurnSetup
	StateTurnStart
	StateTurnEnd
	StateRoundEnd
	StateGameEnd
)

func (s State) String() string {
	switch s {
	case StateGameStart:
		return "game-start"
	case StateRoundSetup:
		return "round-setup"
	case StateTurnSetup:
		return "turn-setup"
	case StateTurnStart:
		return "turn-start"
	case StateTurnEnd:
		return "turn-end"
	case StateRoundEnd:
		return "round-end"
	case StateGameEnd:
		return "game-end"
	default:
		return "unknown"
	}
}
