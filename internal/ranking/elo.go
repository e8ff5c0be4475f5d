package ranking

import "math"

// KFactor governs how much a single duel moves an Elo score.
const KFactor = 32

// UpdateElo applies one pairwise comparison outcome and returns the
// new (winner, loser) scores.
func UpdateElo(winner, loser float64) (float64, float64) {
	expectedWinner := 1 / (1 + math.Pow(10, (loser-winner)/400))
	expectedLoser := 1 - expectedWinner

	newWinner := winner + KFactor*(1-expectedWinner)
	newLoser := loser + KFactor*(0-expectedLoser)
	return newWinner, newLoser
}
