package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	default:
		return "", fmt.Errorf("unknown side %q", s)
	}
}

// Holding is an open position. A Holding with zero quantity never exists in a
// Ledger.
type Holding struct {
	Instrument string          `json:"instrument"`
	Quantity   int64           `json:"quantity"`
	AvgCost    decimal.Decimal `json:"avg_cost"`
}

// CostBasis is the total amount paid for the position at average cost.
func (h Holding) CostBasis() decimal.Decimal {
	return h.AvgCost.Mul(decimal.NewFromInt(h.Quantity))
}

// TradeRecord is the immutable journal entry for one executed trade.
type TradeRecord struct {
	ID         string          `json:"id"`
	AccountID  string          `json:"account_id"`
	Instrument string          `json:"instrument"`
	Side       Side            `json:"side"`
	Quantity   int64           `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Time       time.Time       `json:"time"`

	// Sells only: average cost at the time of sale and the P&L it locked in.
	CostBasis  decimal.Decimal `json:"cost_basis"`
	RealizedPL decimal.Decimal `json:"realized_pl"`

	// What the trader was thinking. Optional.
	Emotion    string `json:"emotion,omitempty"`
	Memo       string `json:"memo,omitempty"`
	Confidence int    `json:"confidence,omitempty"`
}

// Amount is quantity times execution price.
func (t TradeRecord) Amount() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Quantity))
}

// IsLoss reports whether the trade was a sell below average cost.
func (t TradeRecord) IsLoss() bool {
	return t.Side == Sell && t.RealizedPL.IsNegative()
}

// LossInfo describes a losing sell, for review.
type LossInfo struct {
	Instrument  string
	Quantity    int64
	BuyPrice    decimal.Decimal
	SellPrice   decimal.Decimal
	LossAmount  decimal.Decimal // positive
	LossPercent decimal.Decimal // negative, e.g. -12.5
}

// Loss returns details for a losing sell.
func (t TradeRecord) Loss() (LossInfo, bool) {
	if !t.IsLoss() {
		return LossInfo{}, false
	}
	info := LossInfo{
		Instrument: t.Instrument,
		Quantity:   t.Quantity,
		BuyPrice:   t.CostBasis,
		SellPrice:  t.Price,
		LossAmount: t.RealizedPL.Neg(),
	}
	info.LossPercent, _ = t.ReturnPct()
	return info, true
}

// ReturnPct is the sell price's return over average cost in percent,
// rounded to two places. It is false for buys and sells without a cost.
func (t TradeRecord) ReturnPct() (decimal.Decimal, bool) {
	if t.Side != Sell || !t.CostBasis.IsPositive() {
		return decimal.Zero, false
	}
	return t.Price.Sub(t.CostBasis).Div(t.CostBasis).Mul(decimal.NewFromInt(100)).Round(2), true
}
