// Package session wires a configured trading session: quote feed, journal,
// the account rebuilt from its journaled trades, and the services that act
// on it.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/reflect/config"
	"github.com/rustyeddy/reflect/internal/logger"
	"github.com/rustyeddy/reflect/journal"
	"github.com/rustyeddy/reflect/ledger"
	"github.com/rustyeddy/reflect/market"
	"github.com/rustyeddy/reflect/review"
	"github.com/rustyeddy/reflect/risk"
	"github.com/rustyeddy/reflect/sim"
	"github.com/shopspring/decimal"
)

type Session struct {
	Config *config.Config
	Log    logger.Logger

	Feed        market.Feed
	Store       journal.Store
	Account     *ledger.Account
	Executor    *sim.Executor
	Snapshotter *sim.Snapshotter
}

// Open builds a session from cfg. The account starts from the configured
// initial cash and replays every trade the journal holds for it.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (*Session, error) {
	if log == nil {
		log = logger.NewNop()
	}

	feed, err := NewFeed(cfg.Feed, log)
	if err != nil {
		return nil, err
	}

	store, err := OpenStore(cfg.Journal)
	if err != nil {
		return nil, err
	}

	acct, err := restore(ctx, cfg.Account, store)
	if err != nil {
		store.Close()
		return nil, err
	}
	log.Debugf("account %s restored: %d trades, cash %s", acct.ID, acct.View().TradeCount(), acct.View().Cash())

	return &Session{
		Config:  cfg,
		Log:     log,
		Feed:    feed,
		Store:   store,
		Account: acct,
		Executor: sim.NewExecutor(acct, feed,
			sim.WithJournal(store),
			sim.WithPolicy(cfg.Policy),
			sim.WithLogger(log),
		),
		Snapshotter: sim.NewSnapshotter(acct, feed, log),
	}, nil
}

func (s *Session) Close() error {
	return s.Store.Close()
}

// Currency is the account's currency code.
func (s *Session) Currency() string {
	return strings.ToUpper(s.Config.Account.Currency)
}

// NewFeed builds the configured quote feed, bounded by the configured
// timeout.
func NewFeed(cfg config.FeedConfig, log logger.Logger) (market.Feed, error) {
	timeout, err := cfg.ParseTimeout()
	if err != nil {
		return nil, fmt.Errorf("feed timeout: %w", err)
	}

	var feed market.Feed
	switch cfg.Type {
	case config.FeedStatic, "":
		store := market.NewQuoteStore()
		now := time.Now()
		for sym, p := range cfg.Prices {
			store.SetPrice(sym, decimal.NewFromFloat(p), now)
		}
		feed = store
	case config.FeedHTTP:
		feed = market.NewHTTPFeed(cfg.BaseURL, cfg.RatePerMinute, timeout, log)
	case config.FeedAlpaca:
		feed = market.NewAlpacaFeed()
	default:
		return nil, fmt.Errorf("unknown feed type %q", cfg.Type)
	}
	return market.NewTimeoutFeed(feed, timeout), nil
}

// OpenStore opens the configured journal backend.
func OpenStore(cfg config.JournalConfig) (journal.Store, error) {
	var (
		store journal.Store
		err   error
	)
	switch cfg.Type {
	case config.JournalMemory:
		store = journal.NewMemory()
	case config.JournalCSV, "":
		store, err = journal.NewCSV(cfg.Dir)
	case config.JournalSQLite:
		store, err = journal.NewSQLite(cfg.DBPath)
	case config.JournalPostgres:
		store, err = journal.NewPostgres(journal.PostgresConfigFromEnv())
	default:
		err = fmt.Errorf("unknown journal type %q", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return store, nil
}

func restore(ctx context.Context, cfg config.AccountConfig, j journal.Journal) (*ledger.Account, error) {
	trades, err := j.Trades(ctx, cfg.ID)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}
	l, err := ledger.Replay(decimal.NewFromFloat(cfg.InitialCash), trades)
	if err != nil {
		return nil, fmt.Errorf("restore account %s: %w", cfg.ID, err)
	}
	return ledger.NewAccount(cfg.ID, strings.ToUpper(cfg.Currency), l), nil
}

// FindTrade looks a trade up by id, or by a unique suffix of it.
func (s *Session) FindTrade(tradeID string) (ledger.TradeRecord, error) {
	var (
		found   ledger.TradeRecord
		matches int
	)
	for _, t := range s.Account.View().Trades() {
		if t.ID == tradeID {
			return t, nil
		}
		if strings.HasSuffix(t.ID, strings.ToUpper(tradeID)) {
			found = t
			matches++
		}
	}
	switch matches {
	case 0:
		return ledger.TradeRecord{}, fmt.Errorf("%w: %q", journal.ErrTradeNotFound, tradeID)
	case 1:
		return found, nil
	default:
		return ledger.TradeRecord{}, fmt.Errorf("trade id %q is ambiguous (%d matches)", tradeID, matches)
	}
}

// FindNote looks a review note up by id, or by a unique suffix of it.
func (s *Session) FindNote(ctx context.Context, noteID string) (review.Note, error) {
	notes, err := s.Store.Notes(ctx, s.Account.ID)
	if err != nil {
		return review.Note{}, fmt.Errorf("load notes: %w", err)
	}

	var (
		found   review.Note
		matches int
	)
	for _, n := range notes {
		if n.ID == noteID {
			return n, nil
		}
		if strings.HasSuffix(n.ID, strings.ToUpper(noteID)) {
			found = n
			matches++
		}
	}
	switch matches {
	case 0:
		return review.Note{}, fmt.Errorf("%w: %q", journal.ErrNoteNotFound, noteID)
	case 1:
		return found, nil
	default:
		return review.Note{}, fmt.Errorf("note id %q is ambiguous (%d matches)", noteID, matches)
	}
}

// TradesBetween returns the account's trades executed within [start, end),
// asking the journal directly when it can answer range queries.
func (s *Session) TradesBetween(ctx context.Context, start, end time.Time) ([]ledger.TradeRecord, error) {
	type ranger interface {
		ListTradesBetween(ctx context.Context, accountID string, start, end time.Time) ([]ledger.TradeRecord, error)
	}
	if r, ok := s.Store.(ranger); ok {
		return r.ListTradesBetween(ctx, s.Account.ID, start, end)
	}

	var out []ledger.TradeRecord
	for _, t := range s.Account.View().Trades() {
		if !t.Time.Before(start) && t.Time.Before(end) {
			out = append(out, t)
		}
	}
	return out, nil
}

// RecordEquity takes a snapshot and journals it.
func (s *Session) RecordEquity(ctx context.Context) (sim.Snapshot, error) {
	snap, err := s.Snapshotter.Snapshot(ctx)
	if err != nil {
		return sim.Snapshot{}, err
	}
	if err := s.Store.RecordEquity(ctx, snap.Equity()); err != nil {
		return snap, fmt.Errorf("record equity: %w", err)
	}
	return snap, nil
}

// IsUserError reports whether err is something the trader can fix by
// changing the order, as opposed to an environment failure.
func IsUserError(err error) bool {
	return errors.Is(err, ledger.ErrInvalidQuantity) ||
		errors.Is(err, ledger.ErrInsufficientFunds) ||
		errors.Is(err, ledger.ErrInsufficientHoldings) ||
		errors.Is(err, sim.ErrInvalidOrder) ||
		errors.Is(err, risk.ErrPolicyViolation) ||
		errors.Is(err, review.ErrInvalidNote)
}
