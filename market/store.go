package market

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var errNoPrice = errors.New("price not found")

// QuoteStore is an in-memory Feed holding the last quote per instrument.
type QuoteStore struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

func NewQuoteStore() *QuoteStore {
	return &QuoteStore{quotes: make(map[string]Quote)}
}

func (s *QuoteStore) Set(q Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[q.Instrument] = q
}

func (s *QuoteStore) SetPrice(symbol string, price decimal.Decimal, t time.Time) {
	s.Set(Quote{Instrument: symbol, Price: price, Time: t})
}

// Delete forgets the quote for symbol.
func (s *QuoteStore) Delete(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.quotes, symbol)
}

func (s *QuoteStore) Quote(ctx context.Context, symbol string) (Quote, error) {
	if err := ctx.Err(); err != nil {
		return Quote{}, Unavailable(symbol, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[symbol]
	if !ok {
		return Quote{}, Unavailable(symbol, errNoPrice)
	}
	return q, nil
}
