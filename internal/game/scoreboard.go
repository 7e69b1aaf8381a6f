package game

import (
	"math"
	"time"
)

// ScoreBoard is the cumulative score ledger for one session, keyed by
// durable userId so scores survive reconnects. Entries appear lazily with 0.
type ScoreBoard struct {
	totals map[string]int
}

func NewScoreBoard() *ScoreBoard {
	return &ScoreBoard{totals: make(map[string]int)}
}

// Touch ensures a zero entry exists for the player.
func (b *ScoreBoard) Touch(userID string) {
	if _, ok := b.totals[userID]; !ok {
		b.totals[userID] = 0
	}
}

func (b *ScoreBoard) Add(userID string, points int) {
	b.totals[userID] += points
}

func (b *ScoreBoard) Total(userID string) int {
	return b.totals[userID]
}

// Totals returns a copy of the cumulative scores.
func (b *ScoreBoard) Totals() map[string]int {
	out := make(map[string]int, len(b.totals))
	for id, total := range b.totals {
		out[id] = total
	}
	return out
}

// guessPoints scores a correct guess: a 50-point floor plus up to 500
// scaling with the fraction of the turn still remaining, and a flat +100 for
// the first correct guesser of the turn.
func guessPoints(remaining time.Duration, secondsPerRound int, first bool) int {
	fraction := remaining.Seconds() / float64(secondsPerRound)
	if fraction < 0 {
		fraction = 0
	}
	points := 50 + int(math.Ceil(500*fraction))
	if first {
		points += 100
	}
	return points
}

// drawerPoints awards the drawer for the share of eligible guessers who got
// the word, out of a 500-point pool.
func drawerPoints(correct, totalPlayers int) int {
	pool := totalPlayers - 1
	if pool < 1 {
		pool = 1
	}
	return int(math.Ceil(500 * float64(correct) / float64(pool)))
}
