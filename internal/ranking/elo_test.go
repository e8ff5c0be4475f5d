package ranking

import (
	"math"
	"testing"
)

func TestUpdateElo_EqualScores(t *testing.T) {
	winner, loser := UpdateElo(1200, 1200)

	// expected score is 0.5 each, so the winner gains exactly K/2
	if math.Abs(winner-1216) > 1e-9 {
		t.Errorf("winner: got %f, want 1216", winner)
	}
	if math.Abs(loser-1184) > 1e-9 {
		t.Errorf("loser: got %f, want 1184", loser)
	}
}

func TestUpdateElo_UpsetMovesMore(t *testing.T) {
	underdogWin, favoriteLoss := UpdateElo(1200, 1600)
	favoriteWin, underdogLoss := UpdateElo(1600, 1200)

	underdogGain := underdogWin - 1200
	favoriteGain := favoriteWin - 1600
	if underdogGain <= favoriteGain {
		t.Errorf("upset should move more points: underdog gain %f, favorite gain %f", underdogGain, favoriteGain)
	}

	if favoriteLoss >= 1600 {
		t.Errorf("losing favorite must drop, got %f", favoriteLoss)
	}
	if underdogLoss >= 1200 {
		t.Errorf("losing underdog must drop, got %f", underdogLoss)
	}
}

func TestUpdateElo_ZeroSum(t *testing.T) {
	winner, loser := UpdateElo(1450, 1325)
	if math.Abs((winner+loser)-(1450+1325)) > 1e-9 {
		t.Errorf("total Elo must be conserved: got %f", winner+loser)
	}
}
