package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteStoreSetAndGet(t *testing.T) {
	t.Parallel()

	s := NewQuoteStore()
	ts := time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC)
	s.SetPrice("005930", decimal.NewFromInt(71000), ts)

	q, err := s.Quote(context.Background(), "005930")
	require.NoError(t, err)
	assert.Equal(t, "005930", q.Instrument)
	assert.True(t, q.Price.Equal(decimal.NewFromInt(71000)))
	assert.True(t, q.Time.Equal(ts))
}

func TestQuoteStoreMissingIsUnavailable(t *testing.T) {
	t.Parallel()

	s := NewQuoteStore()
	_, err := s.Quote(context.Background(), "UNKNOWN")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuoteUnavailable))

	var qe *QuoteError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, "UNKNOWN", qe.Symbol)
}

func TestQuoteStoreDelete(t *testing.T) {
	t.Parallel()

	s := NewQuoteStore()
	s.SetPrice("035720", decimal.NewFromInt(42000), time.Time{})
	s.Delete("035720")

	_, err := s.Quote(context.Background(), "035720")
	assert.ErrorIs(t, err, ErrQuoteUnavailable)
}

func TestUnavailableDoesNotDoubleWrap(t *testing.T) {
	t.Parallel()

	first := Unavailable("A", errors.New("boom"))
	second := Unavailable("B", first)
	assert.Same(t, first, second)
}

func TestLookup(t *testing.T) {
	t.Parallel()

	inst, ok := Lookup("005930")
	assert.True(t, ok)
	assert.Equal(t, "Samsung Electronics", inst.Name)

	inst, ok = Lookup("XYZ")
	assert.False(t, ok)
	assert.Equal(t, "XYZ", inst.Name)

	assert.Len(t, Symbols(), len(Instruments))
}
