package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/fortuna/augur/internal/store"
)

var decimalOne = decimal.NewFromInt(1)

// DecimalOdds converts American odds to a decimal multiplier:
// +150 → 2.50, -110 → 1.9090..., 0 (missing) → 1.00 so the leg drops out
// of the product instead of corrupting it.
func DecimalOdds(american int32) decimal.Decimal {
	if american == 0 {
		return decimalOne
	}
	hundred := decimal.NewFromInt(100)
	if american > 0 {
		return decimalOne.Add(decimal.NewFromInt(int64(american)).Div(hundred))
	}
	return decimalOne.Add(hundred.Div(decimal.NewFromInt(int64(-american))))
}

// CombineLegResults applies the parlay rule to already-evaluated legs.
// Only call once every leg's game is final.
func CombineLegResults(results []string) string {
	wins, voids := 0, 0
	for _, r := range results {
		switch r {
		case store.ResultLoss:
			return store.ResultLoss
		case store.ResultWin:
			wins++
		case store.ResultVoid:
			voids++
		default:
			// A leg that couldn't be evaluated keeps the parlay open
			return store.ResultPending
		}
	}
	if voids == len(results) {
		return store.ResultVoid
	}
	if wins+voids == len(results) && wins > 0 {
		return store.ResultWin
	}
	return store.ResultPending
}

// ParlayMultiplier is the achieved decimal multiplier: the product of
// odds over winning legs. Voided legs contribute nothing; an all-void
// parlay multiplies to exactly 1 (a refund).
func ParlayMultiplier(legs []*store.ParlayLeg) decimal.Decimal {
	product := decimalOne
	for _, leg := range legs {
		if leg.Result == store.ResultWin {
			product = product.Mul(DecimalOdds(leg.Odds.Int32))
		}
	}
	return product
}

// Payout computes the amount returned to the bettor.
func Payout(result string, stake float64, multiplier decimal.Decimal) float64 {
	switch result {
	case store.ResultWin:
		return decimal.NewFromFloat(stake).Mul(multiplier).Round(2).InexactFloat64()
	case store.ResultVoid:
		return stake
	default:
		return 0
	}
}

// AchievedMultiplier is what lands in a parlay's actual_value: the
// realized multiplier for wins, 1 for refunds, 0 for losses.
func AchievedMultiplier(result string, legs []*store.ParlayLeg) float64 {
	switch result {
	case store.ResultWin:
		return ParlayMultiplier(legs).Round(4).InexactFloat64()
	case store.ResultVoid:
		return 1
	default:
		return 0
	}
}
