package valueobject

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimal places monetary figures are surfaced with
const MoneyPlaces int32 = 2

var hundred = decimal.NewFromInt(100)

// ClampNonNegative returns max(0, x).
// Oversold (negative) quantities carry no asset value, so every valuation
// multiplies cost by the clamped quantity rather than the recorded one.
func ClampNonNegative(x decimal.Decimal) decimal.Decimal {
	if x.IsNegative() {
		return decimal.Zero
	}
	return x
}

// RoundMoney rounds to two decimal places, half away from zero
func RoundMoney(x decimal.Decimal) decimal.Decimal {
	return x.Round(MoneyPlaces)
}

// DiscrepancySign returns the sign of counted - system: -1, 0 or 1
func DiscrepancySign(system, counted decimal.Decimal) int {
	return counted.Sub(system).Sign()
}

// Percent returns numerator / denominator * 100 rounded to money precision.
// A zero denominator yields zero instead of an undefined value.
func Percent(numerator, denominator decimal.Decimal) decimal.Decimal {
	if denominator.IsZero() {
		return decimal.Zero
	}
	return RoundMoney(numerator.Div(denominator).Mul(hundred))
}

// Ratio returns numerator / denominator rounded to 4 places, zero for a zero denominator
func Ratio(numerator, denominator decimal.Decimal) decimal.Decimal {
	if denominator.IsZero() {
		return decimal.Zero
	}
	return numerator.DivRound(denominator, 4)
}
