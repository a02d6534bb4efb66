package session

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rustyeddy/reflect/config"
	"github.com/rustyeddy/reflect/journal"
	"github.com/rustyeddy/reflect/ledger"
	"github.com/rustyeddy/reflect/market"
	"github.com/rustyeddy/reflect/review"
	"github.com/rustyeddy/reflect/risk"
	"github.com/rustyeddy/reflect/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, journalType string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Account.ID = "kim"
	cfg.Policy = risk.Policy{}
	cfg.Journal = config.JournalConfig{
		Type:   journalType,
		Dir:    t.TempDir(),
		DBPath: filepath.Join(t.TempDir(), "reflect.db"),
	}
	return cfg
}

func TestOpenFreshAccount(t *testing.T) {
	t.Parallel()

	s, err := Open(context.Background(), testConfig(t, config.JournalMemory), nil)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "kim", s.Account.ID)
	assert.Equal(t, "KRW", s.Currency())
	assert.Equal(t, "50000000", s.Account.View().Cash().String())
	assert.IsType(t, &journal.Memory{}, s.Store)
}

func TestSessionRestoresFromJournal(t *testing.T) {
	t.Parallel()

	for _, typ := range []string{config.JournalCSV, config.JournalSQLite} {
		t.Run(typ, func(t *testing.T) {
			ctx := context.Background()
			cfg := testConfig(t, typ)

			s, err := Open(ctx, cfg, nil)
			require.NoError(t, err)
			_, err = s.Executor.Execute(ctx, sim.Order{Instrument: "005930", Side: ledger.Buy, Quantity: 100})
			require.NoError(t, err)
			rec, err := s.Executor.Execute(ctx, sim.Order{Instrument: "005930", Side: ledger.Sell, Quantity: 40, Emotion: "#fear"})
			require.NoError(t, err)
			require.NoError(t, s.Close())

			s, err = Open(ctx, cfg, nil)
			require.NoError(t, err)
			defer s.Close()

			view := s.Account.View()
			assert.Equal(t, 2, view.TradeCount())
			h, ok := view.Holding("005930")
			require.True(t, ok)
			assert.Equal(t, int64(60), h.Quantity)
			// 50,000,000 - 100*65000 + 40*65000
			assert.Equal(t, "46100000", view.Cash().String())

			got, err := s.FindTrade(rec.ID)
			require.NoError(t, err)
			assert.Equal(t, "#fear", got.Emotion)
		})
	}
}

func TestFindTradeBySuffix(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := Open(ctx, testConfig(t, config.JournalMemory), nil)
	require.NoError(t, err)
	defer s.Close()

	rec, err := s.Executor.Execute(ctx, sim.Order{Instrument: "035720", Side: ledger.Buy, Quantity: 1})
	require.NoError(t, err)

	got, err := s.FindTrade(rec.ID[len(rec.ID)-8:])
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	_, err = s.FindTrade("nope")
	assert.ErrorIs(t, err, journal.ErrTradeNotFound)
}

func TestFindNoteBySuffix(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := Open(ctx, testConfig(t, config.JournalMemory), nil)
	require.NoError(t, err)
	defer s.Close()

	n := review.Note{ID: "01HS00000000000000000NOTE1", AccountID: "kim", Symbol: "005930",
		DecisionScore: 5, EmotionScore: 5, Lessons: "wait"}
	require.NoError(t, s.Store.SaveNote(ctx, n))

	got, err := s.FindNote(ctx, "note1")
	require.NoError(t, err)
	assert.Equal(t, n.ID, got.ID)

	require.NoError(t, s.Store.DeleteNote(ctx, "kim", n.ID))
	_, err = s.FindNote(ctx, n.ID)
	assert.ErrorIs(t, err, journal.ErrNoteNotFound)
}

func TestTradesBetween(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := Open(ctx, testConfig(t, config.JournalMemory), nil)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Executor.Execute(ctx, sim.Order{Instrument: "035720", Side: ledger.Buy, Quantity: 1})
	require.NoError(t, err)

	now := time.Now()
	got, err := s.TradesBetween(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.TradesBetween(ctx, now.Add(time.Hour), now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecordEquity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := Open(ctx, testConfig(t, config.JournalMemory), nil)
	require.NoError(t, err)
	defer s.Close()

	snap, err := s.RecordEquity(ctx)
	require.NoError(t, err)
	assert.Equal(t, "50000000", snap.TotalValue.String())
	assert.Len(t, s.Store.(*journal.Memory).Equity(), 1)
}

func TestNewFeed(t *testing.T) {
	t.Parallel()

	feed, err := NewFeed(config.FeedConfig{Type: config.FeedStatic, Prices: map[string]float64{"X": 12.5}}, nil)
	require.NoError(t, err)
	q, err := feed.Quote(context.Background(), "X")
	require.NoError(t, err)
	assert.Equal(t, "12.5", q.Price.String())

	_, err = feed.Quote(context.Background(), "Y")
	assert.ErrorIs(t, err, market.ErrQuoteUnavailable)

	_, err = NewFeed(config.FeedConfig{Type: "fax"}, nil)
	assert.Error(t, err)
	_, err = NewFeed(config.FeedConfig{Type: config.FeedStatic, Timeout: "later"}, nil)
	assert.Error(t, err)
}

func TestOpenStoreUnknown(t *testing.T) {
	t.Parallel()

	_, err := OpenStore(config.JournalConfig{Type: "stone-tablet"})
	assert.ErrorContains(t, err, "unknown journal type")
}

func TestIsUserError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUserError(fmt.Errorf("buy: %w", ledger.ErrInsufficientFunds)))
	assert.True(t, IsUserError(risk.ErrPolicyViolation))
	assert.False(t, IsUserError(market.ErrQuoteUnavailable))
}
