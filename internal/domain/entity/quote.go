package entity

import "math/big"

// Quote is the USDT cost of a GHS payout at the current conversion rate.
type Quote struct {
	GHSAmount    float64
	USDTAmount   string // rounded to two decimals
	USDTWei      *big.Int
	Rate         float64
	ReserveGHS   float64
	HasLiquidity bool
}
