package ledger

import (
	"fmt"
	"slices"
	"sort"

	"github.com/shopspring/decimal"
)

// Ledger is the authoritative record of one account's cash, holdings and
// trade history.
//
// A Ledger is not safe for concurrent use. Share it through an Account,
// which serialises writers and hands readers a private copy.
type Ledger struct {
	cash     decimal.Decimal
	holdings map[string]Holding
	trades   []TradeRecord
	ids      map[string]struct{}
}

// New returns an empty ledger funded with cash.
func New(cash decimal.Decimal) (*Ledger, error) {
	if cash.IsNegative() {
		return nil, fmt.Errorf("new ledger: negative opening cash %s", cash)
	}
	return &Ledger{
		cash:     cash,
		holdings: make(map[string]Holding),
		ids:      make(map[string]struct{}),
	}, nil
}

func (l *Ledger) Cash() decimal.Decimal { return l.cash }

// Holding returns the open position in symbol, if any.
func (l *Ledger) Holding(symbol string) (Holding, bool) {
	h, ok := l.holdings[symbol]
	return h, ok
}

// Holdings returns all open positions ordered by instrument.
func (l *Ledger) Holdings() []Holding {
	out := make([]Holding, 0, len(l.holdings))
	for _, h := range l.holdings {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Instrument < out[j].Instrument })
	return out
}

// Trades returns a copy of the trade history, oldest first.
func (l *Ledger) Trades() []TradeRecord {
	return slices.Clone(l.trades)
}

func (l *Ledger) TradeCount() int { return len(l.trades) }

// RealizedPL sums the realized P&L of every sell in the history.
func (l *Ledger) RealizedPL() decimal.Decimal {
	total := decimal.Zero
	for _, t := range l.trades {
		if t.Side == Sell {
			total = total.Add(t.RealizedPL)
		}
	}
	return total
}

// ApplyBuy debits qty*price and grows the position, re-averaging its cost.
func (l *Ledger) ApplyBuy(symbol string, qty int64, price decimal.Decimal) (Holding, error) {
	if err := checkOrder(symbol, qty, price); err != nil {
		return Holding{}, err
	}

	cost := price.Mul(decimal.NewFromInt(qty))
	if cost.GreaterThan(l.cash) {
		return Holding{}, &FundsError{Instrument: symbol, Required: cost, Available: l.cash}
	}

	h, ok := l.holdings[symbol]
	if !ok {
		h = Holding{Instrument: symbol, Quantity: qty, AvgCost: price}
	} else {
		total := h.Quantity + qty
		h.AvgCost = h.CostBasis().Add(cost).Div(decimal.NewFromInt(total))
		h.Quantity = total
	}

	l.cash = l.cash.Sub(cost)
	l.holdings[symbol] = h
	return h, nil
}

// ApplySell credits qty*price and shrinks the position. It returns the
// remaining holding (false once the position is closed) and the realized P&L
// qty*(price-avg).
func (l *Ledger) ApplySell(symbol string, qty int64, price decimal.Decimal) (Holding, bool, decimal.Decimal, error) {
	if err := checkOrder(symbol, qty, price); err != nil {
		return Holding{}, false, decimal.Zero, err
	}

	h, ok := l.holdings[symbol]
	if !ok || qty > h.Quantity {
		return Holding{}, false, decimal.Zero, &HoldingsError{Instrument: symbol, Requested: qty, Held: h.Quantity}
	}

	q := decimal.NewFromInt(qty)
	realized := price.Sub(h.AvgCost).Mul(q)

	l.cash = l.cash.Add(price.Mul(q))
	h.Quantity -= qty
	if h.Quantity == 0 {
		delete(l.holdings, symbol)
		return Holding{}, false, realized, nil
	}
	l.holdings[symbol] = h
	return h, true, realized, nil
}

// AppendTrade adds rec to the history. Records already in the history are
// never touched.
func (l *Ledger) AppendTrade(rec TradeRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("append trade: empty id")
	}
	if _, dup := l.ids[rec.ID]; dup {
		return fmt.Errorf("append trade %s: %w", rec.ID, ErrDuplicateTrade)
	}
	l.ids[rec.ID] = struct{}{}
	l.trades = append(l.trades, rec)
	return nil
}

// Clone returns a deep copy.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		cash:     l.cash,
		holdings: make(map[string]Holding, len(l.holdings)),
		trades:   slices.Clone(l.trades),
		ids:      make(map[string]struct{}, len(l.ids)),
	}
	for k, v := range l.holdings {
		c.holdings[k] = v
	}
	for k := range l.ids {
		c.ids[k] = struct{}{}
	}
	return c
}

func checkOrder(symbol string, qty int64, price decimal.Decimal) error {
	if symbol == "" {
		return fmt.Errorf("empty instrument")
	}
	if qty <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}
	if !price.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidPrice, price)
	}
	return nil
}
