package risk

import (
	"github.com/shopspring/decimal"
)

// MaxAffordable is the largest whole quantity cash can buy at price.
func MaxAffordable(cash, price decimal.Decimal) int64 {
	if !price.IsPositive() || !cash.IsPositive() {
		return 0
	}
	return cash.Div(price).Floor().IntPart()
}

// Pct returns part/whole as a fraction, or 0 when whole is not positive.
func Pct(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).InexactFloat64()
}
