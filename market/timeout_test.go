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

func TestTimeoutFeedPassesThrough(t *testing.T) {
	t.Parallel()

	s := NewQuoteStore()
	s.SetPrice("005930", decimal.NewFromInt(70000), time.Time{})

	f := NewTimeoutFeed(s, time.Second)
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	f.now = func() time.Time { return fixed }

	q, err := f.Quote(context.Background(), "005930")
	require.NoError(t, err)
	assert.True(t, q.Price.Equal(decimal.NewFromInt(70000)))
	assert.True(t, q.Time.Equal(fixed), "zero quote time is stamped")
}

func TestTimeoutFeedSlowFeed(t *testing.T) {
	t.Parallel()

	slow := FeedFunc(func(ctx context.Context, symbol string) (Quote, error) {
		select {
		case <-time.After(time.Second):
			return Quote{Instrument: symbol, Price: decimal.NewFromInt(1)}, nil
		case <-ctx.Done():
			return Quote{}, ctx.Err()
		}
	})

	f := NewTimeoutFeed(slow, 20*time.Millisecond)
	start := time.Now()
	_, err := f.Quote(context.Background(), "005930")
	assert.ErrorIs(t, err, ErrQuoteUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestTimeoutFeedWrapsErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	f := NewTimeoutFeed(FeedFunc(func(ctx context.Context, symbol string) (Quote, error) {
		return Quote{}, boom
	}), time.Second)

	_, err := f.Quote(context.Background(), "005930")
	assert.ErrorIs(t, err, ErrQuoteUnavailable)
	assert.ErrorIs(t, err, boom)
}

func TestTimeoutFeedRejectsNonPositivePrice(t *testing.T) {
	t.Parallel()

	f := NewTimeoutFeed(FeedFunc(func(ctx context.Context, symbol string) (Quote, error) {
		return Quote{Price: decimal.Zero}, nil
	}), time.Second)

	_, err := f.Quote(context.Background(), "005930")
	assert.ErrorIs(t, err, ErrQuoteUnavailable)
}

func TestTimeoutFeedDefaultTimeout(t *testing.T) {
	t.Parallel()

	f := NewTimeoutFeed(NewQuoteStore(), 0)
	assert.Equal(t, DefaultQuoteTimeout, f.timeout)
}
