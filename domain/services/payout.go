package services

import (
	"github.com/shopspring/decimal"
)

// PrizeShare is the part of the pot paid out to winners; the rest is kept by the house
var PrizeShare = decimal.New(8, -1)

// PotSplit is the money outcome of one round
type PotSplit struct {
	Pot        int64
	PayoutEach int64
	TotalPaid  int64
	HouseTake  int64
}

// SplitPot computes pot = tier x players and floor(0.8 x pot / winners) for each winner.
// With no winners nothing is paid out.
func SplitPot(tier int64, playerCount int, winnerCount int) PotSplit {
	pot := decimal.NewFromInt(tier).Mul(decimal.NewFromInt(int64(playerCount)))
	split := PotSplit{Pot: pot.IntPart()}
	if winnerCount <= 0 || pot.IsZero() {
		split.HouseTake = split.Pot
		return split
	}

	each := pot.Mul(PrizeShare).Div(decimal.NewFromInt(int64(winnerCount))).Floor()
	split.PayoutEach = each.IntPart()
	split.TotalPaid = split.PayoutEach * int64(winnerCount)
	split.HouseTake = split.Pot - split.TotalPaid
	return split
}
