// Package sim executes simulated trades against an account ledger at
// externally quoted prices and values the resulting portfolio.
package sim

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/reflect/internal/id"
	"github.com/rustyeddy/reflect/internal/logger"
	"github.com/rustyeddy/reflect/journal"
	"github.com/rustyeddy/reflect/ledger"
	"github.com/rustyeddy/reflect/market"
	"github.com/rustyeddy/reflect/risk"
	"github.com/shopspring/decimal"
)

var ErrInvalidOrder = errors.New("invalid order")

// Order is a request to trade Quantity shares of Instrument at the current
// quote. Emotion, Memo and Confidence are the trader's annotations and are
// copied onto the resulting trade record.
type Order struct {
	Instrument string
	Side       ledger.Side
	Quantity   int64

	Emotion    string
	Memo       string
	Confidence int // 1-10, 0 when not given
}

func (o Order) validate() error {
	if strings.TrimSpace(o.Instrument) == "" {
		return fmt.Errorf("%w: missing instrument", ErrInvalidOrder)
	}
	if o.Side != ledger.Buy && o.Side != ledger.Sell {
		return fmt.Errorf("%w: unknown side %q", ErrInvalidOrder, o.Side)
	}
	if o.Confidence < 0 || o.Confidence > 10 {
		return fmt.Errorf("%w: confidence %d outside 1-10", ErrInvalidOrder, o.Confidence)
	}
	return nil
}

type Executor struct {
	account *ledger.Account
	feed    market.Feed
	journal journal.Journal
	policy  risk.Policy
	log     logger.Logger
	now     func() time.Time
}

type Option func(*Executor)

// WithJournal records every accepted trade. A trade the journal refuses is
// not applied.
func WithJournal(j journal.Journal) Option { return func(e *Executor) { e.journal = j } }

func WithPolicy(p risk.Policy) Option { return func(e *Executor) { e.policy = p } }

func WithLogger(l logger.Logger) Option { return func(e *Executor) { e.log = l } }

// WithClock sets the source of trade timestamps.
func WithClock(now func() time.Time) Option { return func(e *Executor) { e.now = now } }

func NewExecutor(acct *ledger.Account, feed market.Feed, opts ...Option) *Executor {
	e := &Executor{
		account: acct,
		feed:    feed,
		log:     logger.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With("account", acct.ID)
	return e
}

// Execute fills o at the current quote. The quote is fetched first and
// without holding the account lock; everything after that happens as one
// unit against the account, which is left untouched if any step fails.
func (e *Executor) Execute(ctx context.Context, o Order) (ledger.TradeRecord, error) {
	if err := o.validate(); err != nil {
		return ledger.TradeRecord{}, err
	}

	q, err := e.quote(ctx, o.Instrument)
	if err != nil {
		e.log.Warnf("%s %s: %v", o.Side, o.Instrument, err)
		return ledger.TradeRecord{}, err
	}

	if o.Quantity <= 0 {
		return ledger.TradeRecord{}, fmt.Errorf("%s %s: %w: %d", o.Side, o.Instrument, ledger.ErrInvalidQuantity, o.Quantity)
	}

	now := e.now()
	var rec ledger.TradeRecord
	err = e.account.Update(func(l *ledger.Ledger) error {
		if err := e.checkPolicy(l, o, q.Price, now); err != nil {
			return err
		}

		rec = ledger.TradeRecord{
			ID:         id.At(now),
			AccountID:  e.account.ID,
			Instrument: o.Instrument,
			Side:       o.Side,
			Quantity:   o.Quantity,
			Price:      q.Price,
			Time:       now,
			Emotion:    o.Emotion,
			Memo:       o.Memo,
			Confidence: o.Confidence,
		}

		switch o.Side {
		case ledger.Buy:
			if _, err := l.ApplyBuy(o.Instrument, o.Quantity, q.Price); err != nil {
				var fe *ledger.FundsError
				if errors.As(err, &fe) {
					fe.Affordable = risk.MaxAffordable(fe.Available, q.Price)
				}
				return err
			}
		case ledger.Sell:
			h, _ := l.Holding(o.Instrument)
			_, _, realized, err := l.ApplySell(o.Instrument, o.Quantity, q.Price)
			if err != nil {
				return err
			}
			rec.CostBasis = h.AvgCost
			rec.RealizedPL = realized
		}

		if err := l.AppendTrade(rec); err != nil {
			return err
		}
		if e.journal != nil {
			if err := e.journal.RecordTrade(ctx, rec); err != nil {
				return fmt.Errorf("journal trade: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		e.log.Infof("rejected %s %d %s @ %s: %v", o.Side, o.Quantity, o.Instrument, q.Price, err)
		return ledger.TradeRecord{}, fmt.Errorf("%s %s: %w", o.Side, o.Instrument, err)
	}

	e.log.Infof("filled %s %d %s @ %s id=%s", rec.Side, rec.Quantity, rec.Instrument, rec.Price, rec.ID)
	if rec.IsLoss() {
		e.log.Debugf("losing sell %s realized %s", rec.ID, rec.RealizedPL)
	}
	return rec, nil
}

// quote fetches a price and guarantees any failure matches
// market.ErrQuoteUnavailable.
func (e *Executor) quote(ctx context.Context, symbol string) (market.Quote, error) {
	q, err := e.feed.Quote(ctx, symbol)
	if err != nil {
		return market.Quote{}, market.Unavailable(symbol, err)
	}
	if !q.Price.IsPositive() {
		return market.Quote{}, market.Unavailable(symbol, fmt.Errorf("non-positive price %s", q.Price))
	}
	return q, nil
}

func (e *Executor) checkPolicy(l *ledger.Ledger, o Order, price decimal.Decimal, now time.Time) error {
	d := risk.Evaluate(e.policy, risk.Intent{
		Now:        now,
		Instrument: o.Instrument,
		Buy:        o.Side == ledger.Buy,
		Quantity:   o.Quantity,
		Price:      price,
		Emotion:    o.Emotion,
		Memo:       o.Memo,
	}, riskView(l, o.Instrument, price, now))

	if d.Allowed {
		return nil
	}
	for _, v := range d.Violations {
		e.log.Warnf("policy %s: %s", v.Code, v.Msg)
	}
	if e.policy.Enforce {
		return d.Err()
	}
	return nil
}

// riskView values the instrument being traded at price and everything else
// at cost, since only one quote is at hand.
func riskView(l *ledger.Ledger, symbol string, price decimal.Decimal, now time.Time) risk.View {
	v := risk.View{Cash: l.Cash(), TotalValue: l.Cash()}
	for _, h := range l.Holdings() {
		if h.Instrument == symbol {
			v.PositionValue = price.Mul(decimal.NewFromInt(h.Quantity))
			v.TotalValue = v.TotalValue.Add(v.PositionValue)
			continue
		}
		v.TotalValue = v.TotalValue.Add(h.CostBasis())
	}

	y, m, d := now.Date()
	for _, t := range l.Trades() {
		if t.Side != ledger.Sell {
			continue
		}
		ty, tm, td := t.Time.In(now.Location()).Date()
		if ty == y && tm == m && td == d {
			v.DayRealized = v.DayRealized.Add(t.RealizedPL)
		}
	}
	return v
}

// Preview is the expected outcome of selling at the current quote.
type Preview struct {
	Instrument  string
	Quantity    int64
	Held        int64
	Price       decimal.Decimal
	AvgCost     decimal.Decimal
	Proceeds    decimal.Decimal
	ExpectedPL  decimal.Decimal
	ExpectedPct decimal.Decimal // percent, rounded to 2 places
}

func (p Preview) IsLoss() bool { return p.ExpectedPL.IsNegative() }

// PreviewSell prices a prospective sell without touching the account.
func (e *Executor) PreviewSell(ctx context.Context, symbol string, qty int64) (Preview, error) {
	q, err := e.quote(ctx, symbol)
	if err != nil {
		return Preview{}, err
	}
	if qty <= 0 {
		return Preview{}, fmt.Errorf("preview %s: %w: %d", symbol, ledger.ErrInvalidQuantity, qty)
	}

	var (
		h  ledger.Holding
		ok bool
	)
	e.account.Read(func(l *ledger.Ledger) { h, ok = l.Holding(symbol) })
	if !ok || qty > h.Quantity {
		return Preview{}, fmt.Errorf("preview %s: %w",
			symbol, &ledger.HoldingsError{Instrument: symbol, Requested: qty, Held: h.Quantity})
	}

	n := decimal.NewFromInt(qty)
	p := Preview{
		Instrument: symbol,
		Quantity:   qty,
		Held:       h.Quantity,
		Price:      q.Price,
		AvgCost:    h.AvgCost,
		Proceeds:   q.Price.Mul(n),
		ExpectedPL: q.Price.Sub(h.AvgCost).Mul(n),
	}
	if h.AvgCost.IsPositive() {
		p.ExpectedPct = q.Price.Sub(h.AvgCost).Div(h.AvgCost).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return p, nil
}
