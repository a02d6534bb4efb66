package sim

import (
	"context"
	"sync"
	"time"

	"github.com/rustyeddy/reflect/internal/logger"
	"github.com/rustyeddy/reflect/journal"
	"github.com/rustyeddy/reflect/ledger"
	"github.com/rustyeddy/reflect/market"
	"github.com/shopspring/decimal"
)

// Valuation is one holding priced at the current quote. When no quote could
// be had, Known is false and only the cost side is filled in.
type Valuation struct {
	ledger.Holding
	Name string `json:"name"`

	Known         bool            `json:"known"`
	Price         decimal.Decimal `json:"price"`
	MarketValue   decimal.Decimal `json:"market_value"`
	UnrealizedPL  decimal.Decimal `json:"unrealized_pl"`
	UnrealizedPct decimal.Decimal `json:"unrealized_pct"`
	Weight        decimal.Decimal `json:"weight"` // percent of TotalValue
}

// Snapshot is a point-in-time valuation of an account. It is a plain value;
// nothing in it refers back to the ledger.
type Snapshot struct {
	AccountID string    `json:"account_id"`
	Currency  string    `json:"currency"`
	Time      time.Time `json:"time"`

	Cash         decimal.Decimal `json:"cash"`
	Holdings     []Valuation     `json:"holdings"`
	CostBasis    decimal.Decimal `json:"cost_basis"`   // known holdings only
	MarketValue  decimal.Decimal `json:"market_value"` // known holdings only
	UnrealizedPL decimal.Decimal `json:"unrealized_pl"`
	RealizedPL   decimal.Decimal `json:"realized_pl"`
	TotalValue   decimal.Decimal `json:"total_value"`
	TradeCount   int             `json:"trade_count"`

	// Symbols whose value is left out of MarketValue and TotalValue.
	Unpriced []string `json:"unpriced,omitempty"`
}

// Complete reports whether every holding was priced.
func (s Snapshot) Complete() bool { return len(s.Unpriced) == 0 }

type Snapshotter struct {
	account *ledger.Account
	feed    market.Feed
	log     logger.Logger
	now     func() time.Time
}

func NewSnapshotter(acct *ledger.Account, feed market.Feed, log logger.Logger) *Snapshotter {
	if log == nil {
		log = logger.NewNop()
	}
	return &Snapshotter{account: acct, feed: feed, log: log.With("account", acct.ID), now: time.Now}
}

// Snapshot values the account as of now. The ledger is copied under the read
// lock and priced afterwards, so slow quotes never hold up trading. A holding
// without a quote is reported as unknown rather than failing the snapshot.
func (s *Snapshotter) Snapshot(ctx context.Context) (Snapshot, error) {
	view := s.account.View()
	snap := Snapshot{
		AccountID:  s.account.ID,
		Currency:   s.account.Currency,
		Time:       s.now(),
		Cash:       view.Cash(),
		RealizedPL: view.RealizedPL(),
		TradeCount: view.TradeCount(),
	}

	holdings := view.Holdings()
	snap.Holdings = make([]Valuation, len(holdings))

	var wg sync.WaitGroup
	for i, h := range holdings {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap.Holdings[i] = s.value(ctx, h)
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	for _, v := range snap.Holdings {
		if !v.Known {
			snap.Unpriced = append(snap.Unpriced, v.Instrument)
			continue
		}
		snap.CostBasis = snap.CostBasis.Add(v.CostBasis())
		snap.MarketValue = snap.MarketValue.Add(v.MarketValue)
		snap.UnrealizedPL = snap.UnrealizedPL.Add(v.UnrealizedPL)
	}
	snap.TotalValue = snap.Cash.Add(snap.MarketValue)

	if snap.TotalValue.IsPositive() {
		for i := range snap.Holdings {
			if snap.Holdings[i].Known {
				snap.Holdings[i].Weight = snap.Holdings[i].MarketValue.
					Div(snap.TotalValue).Mul(decimal.NewFromInt(100)).Round(2)
			}
		}
	}
	return snap, nil
}

func (s *Snapshotter) value(ctx context.Context, h ledger.Holding) Valuation {
	inst, _ := market.Lookup(h.Instrument)
	v := Valuation{Holding: h, Name: inst.Name}

	q, err := s.feed.Quote(ctx, h.Instrument)
	if err != nil || !q.Price.IsPositive() {
		s.log.Warnf("no price for %s, leaving it unvalued: %v", h.Instrument, err)
		return v
	}

	n := decimal.NewFromInt(h.Quantity)
	v.Known = true
	v.Price = q.Price
	v.MarketValue = q.Price.Mul(n)
	v.UnrealizedPL = q.Price.Sub(h.AvgCost).Mul(n)
	if h.AvgCost.IsPositive() {
		v.UnrealizedPct = q.Price.Sub(h.AvgCost).Div(h.AvgCost).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return v
}

// Equity converts a snapshot into the record kept by a journal.
func (s Snapshot) Equity() journal.EquitySnapshot {
	return journal.EquitySnapshot{
		AccountID:    s.AccountID,
		Time:         s.Time,
		Cash:         s.Cash,
		MarketValue:  s.MarketValue,
		TotalValue:   s.TotalValue,
		UnrealizedPL: s.UnrealizedPL,
		RealizedPL:   s.RealizedPL,
		Unpriced:     len(s.Unpriced),
	}
}
