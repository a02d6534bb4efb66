package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrQuoteUnavailable is reported whenever a feed cannot supply a usable
// price. Callers may retry.
var ErrQuoteUnavailable = errors.New("quote unavailable")

// Quote is a price observation supplied by a Feed.
type Quote struct {
	Instrument string
	Price      decimal.Decimal
	Time       time.Time
}

// Feed supplies current prices on demand.
type Feed interface {
	Quote(ctx context.Context, symbol string) (Quote, error)
}

// FeedFunc adapts a function to the Feed interface.
type FeedFunc func(ctx context.Context, symbol string) (Quote, error)

func (f FeedFunc) Quote(ctx context.Context, symbol string) (Quote, error) {
	return f(ctx, symbol)
}

// QuoteError explains why a quote could not be obtained. It always matches
// ErrQuoteUnavailable.
type QuoteError struct {
	Symbol string
	Err    error
}

func (e *QuoteError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("quote unavailable for %q", e.Symbol)
	}
	return fmt.Sprintf("quote unavailable for %q: %v", e.Symbol, e.Err)
}

func (e *QuoteError) Is(target error) bool { return target == ErrQuoteUnavailable }

func (e *QuoteError) Unwrap() error { return e.Err }

// Unavailable wraps err as a QuoteError unless it already is one.
func Unavailable(symbol string, err error) error {
	if err != nil && errors.Is(err, ErrQuoteUnavailable) {
		return err
	}
	return &QuoteError{Symbol: symbol, Err: err}
}
