package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// State is the serialisable form of a Ledger.
type State struct {
	Cash     decimal.Decimal `json:"cash"`
	Holdings []Holding       `json:"holdings"`
	Trades   []TradeRecord   `json:"trades"`
}

func (l *Ledger) State() State {
	return State{
		Cash:     l.cash,
		Holdings: l.Holdings(),
		Trades:   l.Trades(),
	}
}

// FromState restores a ledger, rejecting states that break the ledger's
// invariants.
func FromState(s State) (*Ledger, error) {
	l, err := New(s.Cash)
	if err != nil {
		return nil, err
	}
	for _, h := range s.Holdings {
		if h.Instrument == "" {
			return nil, fmt.Errorf("restore: holding without instrument")
		}
		if h.Quantity <= 0 {
			return nil, fmt.Errorf("restore %s: %w: %d", h.Instrument, ErrInvalidQuantity, h.Quantity)
		}
		if !h.AvgCost.IsPositive() {
			return nil, fmt.Errorf("restore %s: %w: average cost %s", h.Instrument, ErrInvalidPrice, h.AvgCost)
		}
		if _, dup := l.holdings[h.Instrument]; dup {
			return nil, fmt.Errorf("restore: duplicate holding %s", h.Instrument)
		}
		l.holdings[h.Instrument] = h
	}
	for _, t := range s.Trades {
		if err := l.AppendTrade(t); err != nil {
			return nil, fmt.Errorf("restore: %w", err)
		}
	}
	return l, nil
}

// Replay rebuilds a ledger from its opening cash and trade history, applying
// each trade through the same checks as a live trade. Recorded realized P&L
// must agree with the recomputed value.
func Replay(openingCash decimal.Decimal, trades []TradeRecord) (*Ledger, error) {
	l, err := New(openingCash)
	if err != nil {
		return nil, err
	}
	for i, t := range trades {
		switch t.Side {
		case Buy:
			if _, err := l.ApplyBuy(t.Instrument, t.Quantity, t.Price); err != nil {
				return nil, fmt.Errorf("replay trade %d (%s): %w", i, t.ID, err)
			}
		case Sell:
			_, _, realized, err := l.ApplySell(t.Instrument, t.Quantity, t.Price)
			if err != nil {
				return nil, fmt.Errorf("replay trade %d (%s): %w", i, t.ID, err)
			}
			if !realized.Round(6).Equal(t.RealizedPL.Round(6)) {
				return nil, fmt.Errorf("replay trade %d (%s): realized P&L %s does not match recomputed %s",
					i, t.ID, t.RealizedPL, realized)
			}
		default:
			return nil, fmt.Errorf("replay trade %d (%s): unknown side %q", i, t.ID, t.Side)
		}
		if err := l.AppendTrade(t); err != nil {
			return nil, fmt.Errorf("replay trade %d: %w", i, err)
		}
	}
	return l, nil
}
