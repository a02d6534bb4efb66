// Package currency formats decimal amounts for display.
package currency

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const KRW = money.KRW

var (
	eok = decimal.NewFromInt(100_000_000)
	man = decimal.NewFromInt(10_000)

	grouped = money.NewFormatter(0, ".", ",", "", "1")
)

// Format renders amount in code's conventions, e.g. "₩1,500,000" or
// "$1,234.56". Amounts are rounded to the currency's minor unit. Unknown
// codes fall back to the bare number.
func Format(amount decimal.Decimal, code string) string {
	cur := money.GetCurrency(strings.ToUpper(code))
	if cur == nil {
		return amount.String()
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// Signed is Format with an explicit sign in front of the currency symbol.
func Signed(amount decimal.Decimal, code string) string {
	switch {
	case amount.IsPositive():
		return "+" + Format(amount, code)
	case amount.IsNegative():
		return "-" + Format(amount.Neg(), code)
	}
	return Format(amount, code)
}

// Smart renders a won amount in compact 억/만 units:
//
//	9,500       -> "9,500원"
//	1,500,000   -> "150만원"
//	1,234,567   -> "123만 4,567원"
//	120,000,000 -> "1억 2,000만원"
//
// Amounts are truncated to whole won.
func Smart(amount decimal.Decimal) string {
	n := amount.Truncate(0)
	sign := ""
	if n.IsNegative() {
		sign = "-"
		n = n.Neg()
	}

	switch {
	case n.GreaterThanOrEqual(eok):
		e := n.Div(eok).Truncate(0)
		m := n.Mod(eok).Div(man).Truncate(0)
		if m.IsPositive() {
			return sign + e.String() + "억 " + group(m) + "만원"
		}
		return sign + e.String() + "억원"
	case n.GreaterThanOrEqual(man):
		m := n.Div(man).Truncate(0)
		rest := n.Mod(man)
		if rest.IsPositive() {
			return sign + group(m) + "만 " + group(rest) + "원"
		}
		return sign + group(m) + "만원"
	default:
		return sign + group(n) + "원"
	}
}

func group(d decimal.Decimal) string {
	return grouped.Format(d.IntPart())
}

// Percent renders p (already a percentage) with two decimals and a sign.
func Percent(p decimal.Decimal) string {
	s := p.StringFixed(2) + "%"
	if p.IsPositive() {
		return "+" + s
	}
	return s
}
