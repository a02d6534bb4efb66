package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRoundTrip(t *testing.T) {
	t.Parallel()

	l := newLedger(t, 10000)
	_, err := l.ApplyBuy("005930", 10, d(100))
	require.NoError(t, err)
	require.NoError(t, l.AppendTrade(TradeRecord{ID: "T1", Instrument: "005930", Side: Buy, Quantity: 10, Price: d(100)}))

	data, err := json.Marshal(l.State())
	require.NoError(t, err)

	var s State
	require.NoError(t, json.Unmarshal(data, &s))

	r, err := FromState(s)
	require.NoError(t, err)
	assert.True(t, r.Cash().Equal(d(9000)))
	h, ok := r.Holding("005930")
	require.True(t, ok)
	assert.Equal(t, int64(10), h.Quantity)
	assert.True(t, h.AvgCost.Equal(d(100)))
	assert.Len(t, r.Trades(), 1)
}

func TestFromStateRejectsBrokenInvariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		state State
	}{
		{"negative cash", State{Cash: d(-1)}},
		{"zero quantity", State{Cash: d(1), Holdings: []Holding{{Instrument: "A", Quantity: 0, AvgCost: d(1)}}}},
		{"zero cost", State{Cash: d(1), Holdings: []Holding{{Instrument: "A", Quantity: 1}}}},
		{"no instrument", State{Cash: d(1), Holdings: []Holding{{Quantity: 1, AvgCost: d(1)}}}},
		{"duplicate holding", State{Cash: d(1), Holdings: []Holding{
			{Instrument: "A", Quantity: 1, AvgCost: d(1)},
			{Instrument: "A", Quantity: 2, AvgCost: d(1)},
		}}},
		{"duplicate trade", State{Cash: d(1), Trades: []TradeRecord{{ID: "X"}, {ID: "X"}}}},
	}

	for _, tt := range tests {
		_, err := FromState(tt.state)
		assert.Error(t, err, tt.name)
	}
}

func TestReplayRebuildsLedger(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	trades := []TradeRecord{
		{ID: "1", Instrument: "005930", Side: Buy, Quantity: 10, Price: d(100), Time: t0},
		{ID: "2", Instrument: "005930", Side: Sell, Quantity: 4, Price: d(120), Time: t0.Add(time.Hour),
			CostBasis: d(100), RealizedPL: d(80)},
		{ID: "3", Instrument: "035720", Side: Buy, Quantity: 3, Price: d(300), Time: t0.Add(2 * time.Hour)},
	}

	l, err := Replay(d(10000), trades)
	require.NoError(t, err)
	assert.True(t, l.Cash().Equal(d(8580)), l.Cash().String())
	assert.Len(t, l.Holdings(), 2)
	assert.Equal(t, trades, l.Trades())
	assert.True(t, l.RealizedPL().Equal(d(80)))
}

func TestReplayRejectsImpossibleHistory(t *testing.T) {
	t.Parallel()

	_, err := Replay(d(100), []TradeRecord{
		{ID: "1", Instrument: "005930", Side: Buy, Quantity: 10, Price: d(100)},
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = Replay(d(100), []TradeRecord{
		{ID: "1", Instrument: "005930", Side: Sell, Quantity: 1, Price: d(100)},
	})
	assert.ErrorIs(t, err, ErrInsufficientHoldings)

	_, err = Replay(d(1000), []TradeRecord{
		{ID: "1", Instrument: "005930", Side: Buy, Quantity: 1, Price: d(100)},
		{ID: "2", Instrument: "005930", Side: Sell, Quantity: 1, Price: d(150), RealizedPL: d(1)},
	})
	assert.ErrorContains(t, err, "does not match")

	_, err = Replay(d(1000), []TradeRecord{{ID: "1", Instrument: "005930", Side: "hold", Quantity: 1, Price: d(1)}})
	assert.Error(t, err)
}

func TestReplayToleratesRepeatingAverage(t *testing.T) {
	t.Parallel()

	// 1/3 averages never terminate; replay must still agree with itself.
	live := newLedger(t, 10000)
	_, err := live.ApplyBuy("A", 1, d(100))
	require.NoError(t, err)
	_, err = live.ApplyBuy("A", 2, d(101))
	require.NoError(t, err)
	_, _, realized, err := live.ApplySell("A", 1, decimal.RequireFromString("150.5"))
	require.NoError(t, err)

	_, err = Replay(d(10000), []TradeRecord{
		{ID: "1", Instrument: "A", Side: Buy, Quantity: 1, Price: d(100)},
		{ID: "2", Instrument: "A", Side: Buy, Quantity: 2, Price: d(101)},
		{ID: "3", Instrument: "A", Side: Sell, Quantity: 1, Price: decimal.RequireFromString("150.5"), RealizedPL: realized},
	})
	assert.NoError(t, err)
}
