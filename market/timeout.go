package market

import (
	"context"
	"fmt"
	"time"
)

const DefaultQuoteTimeout = 5 * time.Second

// TimeoutFeed bounds every quote request made to the wrapped feed. Slow,
// failing, or nonsensical answers all surface as ErrQuoteUnavailable.
type TimeoutFeed struct {
	feed    Feed
	timeout time.Duration
	now     func() time.Time
}

func NewTimeoutFeed(feed Feed, timeout time.Duration) *TimeoutFeed {
	if timeout <= 0 {
		timeout = DefaultQuoteTimeout
	}
	return &TimeoutFeed{feed: feed, timeout: timeout, now: time.Now}
}

func (f *TimeoutFeed) Quote(ctx context.Context, symbol string) (Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	type result struct {
		q   Quote
		err error
	}
	// Buffered so the worker never blocks if we stop waiting.
	ch := make(chan result, 1)
	go func() {
		q, err := f.feed.Quote(ctx, symbol)
		ch <- result{q, err}
	}()

	select {
	case <-ctx.Done():
		return Quote{}, Unavailable(symbol, ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return Quote{}, Unavailable(symbol, r.err)
		}
		if !r.q.Price.IsPositive() {
			return Quote{}, Unavailable(symbol, fmt.Errorf("non-positive price %s", r.q.Price))
		}
		if r.q.Instrument == "" {
			r.q.Instrument = symbol
		}
		if r.q.Time.IsZero() {
			r.q.Time = f.now()
		}
		return r.q, nil
	}
}
