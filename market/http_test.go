package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rustyeddy/reflect/internal/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuoteServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/quotes/005930":
			_, _ = w.Write([]byte(`{"symbol":"005930","price":71500,"time":"2024-08-01T09:00:00Z"}`))
		case "/quotes/035720":
			_, _ = w.Write([]byte(`{"symbol":"035720","price":"41250.5","time":"2024-08-01T09:00:00Z"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"unknown instrument"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPFeedQuote(t *testing.T) {
	t.Parallel()

	srv := newQuoteServer(t)
	f := NewHTTPFeed(srv.URL, 0, time.Second, logger.NewNop())

	q, err := f.Quote(context.Background(), "005930")
	require.NoError(t, err)
	assert.Equal(t, "005930", q.Instrument)
	assert.True(t, q.Price.Equal(decimal.NewFromInt(71500)))
	assert.True(t, q.Time.Equal(time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC)))

	q, err = f.Quote(context.Background(), "035720")
	require.NoError(t, err)
	assert.True(t, q.Price.Equal(decimal.RequireFromString("41250.5")))
}

func TestHTTPFeedUnknownInstrument(t *testing.T) {
	t.Parallel()

	srv := newQuoteServer(t)
	f := NewHTTPFeed(srv.URL, 600, time.Second, logger.NewNop())

	_, err := f.Quote(context.Background(), "999999")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQuoteUnavailable)
	assert.Contains(t, err.Error(), "unknown instrument")
}

func TestHTTPFeedServerDown(t *testing.T) {
	t.Parallel()

	srv := newQuoteServer(t)
	url := srv.URL
	srv.Close()

	f := NewTimeoutFeed(NewHTTPFeed(url, 0, time.Second, logger.NewNop()), time.Second)
	_, err := f.Quote(context.Background(), "005930")
	assert.ErrorIs(t, err, ErrQuoteUnavailable)
}

func TestHTTPFeedSkipsRequestAfterCancel(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"symbol":"005930","price":71500}`))
	}))
	t.Cleanup(srv.Close)

	f := NewHTTPFeed(srv.URL, 0, time.Second, logger.NewNop())
	_, err := f.Quote(context.Background(), "005930")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Quote(ctx, "005930")
	assert.ErrorIs(t, err, ErrQuoteUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), hits.Load())
}
