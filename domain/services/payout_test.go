package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitPot(t *testing.T) {
	tests := []struct {
		name       string
		tier       int64
		players    int
		winners    int
		pot        int64
		payoutEach int64
	}{
		{"two players one winner", 10, 2, 1, 20, 16},
		{"ten players one winner", 100, 10, 1, 1000, 800},
		{"three players two winners floors", 10, 3, 2, 30, 12},
		{"seven players three winners floors", 30, 7, 3, 210, 56},
		{"odd split", 20, 3, 7, 60, 6},
		{"no winners", 50, 4, 0, 200, 0},
		{"no players", 10, 0, 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split := SplitPot(tt.tier, tt.players, tt.winners)
			assert.Equal(t, tt.pot, split.Pot)
			assert.Equal(t, tt.payoutEach, split.PayoutEach)
			assert.Equal(t, split.PayoutEach*int64(max(tt.winners, 0)), split.TotalPaid)
			assert.Equal(t, split.Pot, split.TotalPaid+split.HouseTake)
		})
	}
}

func TestSplitPot_NeverExceedsPrizeShare(t *testing.T) {
	for tier := int64(1); tier <= 100; tier += 7 {
		for players := 1; players <= 10; players++ {
			for winners := 1; winners <= players; winners++ {
				split := SplitPot(tier, players, winners)
				// integer form of TotalPaid <= 0.8 * pot
				assert.LessOrEqual(t, split.TotalPaid*10, split.Pot*8)
				// flooring loses less than one unit per winner
				assert.Greater(t, (split.TotalPaid+int64(winners))*10, split.Pot*8)
			}
		}
	}
}
