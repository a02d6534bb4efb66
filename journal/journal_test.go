package journal

import (
	"context"
	"testing"
	"time"

	"github.com/rustyeddy/reflect/ledger"
	"github.com/rustyeddy/reflect/review"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 15, 1, 30, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleTrades() []ledger.TradeRecord {
	return []ledger.TradeRecord{
		{
			ID: "01HS0000000000000000000001", AccountID: "acct", Instrument: "005930",
			Side: ledger.Buy, Quantity: 10, Price: d("71000"), Time: t0,
			Emotion: "#greed", Memo: "breakout, chasing", Confidence: 7,
		},
		{
			ID: "01HS0000000000000000000002", AccountID: "other", Instrument: "035720",
			Side: ledger.Buy, Quantity: 5, Price: d("48000"), Time: t0.Add(time.Minute),
		},
		{
			ID: "01HS0000000000000000000003", AccountID: "acct", Instrument: "005930",
			Side: ledger.Sell, Quantity: 4, Price: d("68500.5"), Time: t0.Add(time.Hour),
			CostBasis: d("71000"), RealizedPL: d("-9998"), Emotion: "#fear",
		},
	}
}

func sampleNote(noteID string, score int) review.Note {
	return review.Note{
		ID:              noteID,
		AccountID:       "acct",
		TradeID:         "01HS0000000000000000000003",
		Symbol:          "005930",
		TradeDate:       t0.Add(time.Hour),
		OriginalEmotion: "#fear",
		ReviewedEmotion: "#panic",
		DecisionBasis:   []string{"news", "chart"},
		Lessons:         "sold into a dip, stick to the plan",
		Principles:      "no market orders on gap downs",
		DecisionScore:   score,
		EmotionScore:    3,
		ReviewedAt:      t0.Add(24 * time.Hour),
	}
}

func assertTradesEqual(t *testing.T, want, got []ledger.TradeRecord) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		w, g := want[i], got[i]
		assert.Equal(t, w.ID, g.ID)
		assert.Equal(t, w.AccountID, g.AccountID)
		assert.Equal(t, w.Instrument, g.Instrument)
		assert.Equal(t, w.Side, g.Side)
		assert.Equal(t, w.Quantity, g.Quantity)
		assert.True(t, w.Price.Equal(g.Price), "price %s != %s", w.Price, g.Price)
		assert.True(t, w.Time.Equal(g.Time), "time %s != %s", w.Time, g.Time)
		assert.True(t, w.CostBasis.Equal(g.CostBasis), "cost basis %s != %s", w.CostBasis, g.CostBasis)
		assert.True(t, w.RealizedPL.Equal(g.RealizedPL), "realized %s != %s", w.RealizedPL, g.RealizedPL)
		assert.Equal(t, w.Emotion, g.Emotion)
		assert.Equal(t, w.Memo, g.Memo)
		assert.Equal(t, w.Confidence, g.Confidence)
	}
}

// exerciseStore checks the behaviour every Store must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	trades := sampleTrades()
	for _, tr := range trades {
		require.NoError(t, s.RecordTrade(ctx, tr))
	}

	got, err := s.Trades(ctx, "acct")
	require.NoError(t, err)
	assertTradesEqual(t, []ledger.TradeRecord{trades[0], trades[2]}, got)

	none, err := s.Trades(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, s.RecordEquity(ctx, EquitySnapshot{
		AccountID: "acct", Time: t0, Cash: d("49290000"), MarketValue: d("710000"),
		TotalValue: d("50000000"), Unpriced: 1,
	}))

	require.NoError(t, s.SaveNote(ctx, sampleNote("N1", 4)))
	require.NoError(t, s.SaveNote(ctx, sampleNote("N2", 6)))
	updated := sampleNote("N1", 9)
	updated.Favorite = true
	require.NoError(t, s.SaveNote(ctx, updated))

	notes, err := s.Notes(ctx, "acct")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "N1", notes[0].ID)
	assert.Equal(t, 9, notes[0].DecisionScore)
	assert.True(t, notes[0].Favorite)
	assert.Equal(t, []string{"news", "chart"}, notes[0].DecisionBasis)
	assert.True(t, notes[0].TradeDate.Equal(t0.Add(time.Hour)))
	assert.True(t, notes[0].ReviewedAt.Equal(t0.Add(24*time.Hour)))
	assert.Equal(t, "N2", notes[1].ID)

	other, err := s.Notes(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, other)

	assert.ErrorIs(t, s.DeleteNote(ctx, "other", "N1"), ErrNoteNotFound)
	require.NoError(t, s.DeleteNote(ctx, "acct", "N1"))
	assert.ErrorIs(t, s.DeleteNote(ctx, "acct", "N1"), ErrNoteNotFound)

	notes, err = s.Notes(ctx, "acct")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "N2", notes[0].ID)

	require.NoError(t, s.SaveNote(ctx, sampleNote("N1", 5)))
	notes, err = s.Notes(ctx, "acct")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	byID := map[string]int{}
	for _, n := range notes {
		byID[n.ID] = n.DecisionScore
	}
	assert.Equal(t, map[string]int{"N1": 5, "N2": 6}, byID)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	exerciseStore(t, m)
	assert.Len(t, m.Equity(), 1)
	assert.NoError(t, m.Close())
}

func TestMemoryRefusesWritesAfterClose(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.RecordTrade(ctx, sampleTrades()[0]))
	require.NoError(t, m.Close())

	assert.ErrorIs(t, m.RecordTrade(ctx, sampleTrades()[2]), ErrClosed)
	assert.ErrorIs(t, m.RecordEquity(ctx, EquitySnapshot{AccountID: "acct"}), ErrClosed)
	assert.ErrorIs(t, m.SaveNote(ctx, sampleNote("N1", 4)), ErrClosed)

	got, err := m.Trades(ctx, "acct")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestReplayFromJournal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()
	for _, tr := range sampleTrades() {
		require.NoError(t, m.RecordTrade(ctx, tr))
	}

	trades, err := m.Trades(ctx, "acct")
	require.NoError(t, err)

	l, err := ledger.Replay(d("1000000"), trades)
	require.NoError(t, err)

	h, ok := l.Holding("005930")
	require.True(t, ok)
	assert.Equal(t, int64(6), h.Quantity)
	assert.Equal(t, "564002", l.Cash().String())
}
