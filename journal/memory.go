package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rustyeddy/reflect/ledger"
	"github.com/rustyeddy/reflect/review"
)

var ErrClosed = errors.New("journal closed")

// Memory is a Store that lives only as long as the process. Writes after
// Close fail with ErrClosed; reads keep working.
type Memory struct {
	mu     sync.Mutex
	trades []ledger.TradeRecord
	equity []EquitySnapshot
	notes  []review.Note
	closed bool
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) RecordTrade(ctx context.Context, rec ledger.TradeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.trades = append(m.trades, rec)
	return nil
}

func (m *Memory) RecordEquity(ctx context.Context, snap EquitySnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.equity = append(m.equity, snap)
	return nil
}

func (m *Memory) Trades(ctx context.Context, accountID string) ([]ledger.TradeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ledger.TradeRecord
	for _, t := range m.trades {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	return out, nil
}

// Equity returns every recorded snapshot.
func (m *Memory) Equity() []EquitySnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]EquitySnapshot(nil), m.equity...)
}

func (m *Memory) SaveNote(ctx context.Context, n review.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for i := range m.notes {
		if m.notes[i].ID == n.ID {
			m.notes[i] = n
			return nil
		}
	}
	m.notes = append(m.notes, n)
	return nil
}

func (m *Memory) Notes(ctx context.Context, accountID string) ([]review.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []review.Note
	for _, n := range m.notes {
		if n.AccountID == accountID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *Memory) DeleteNote(ctx context.Context, accountID, noteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for i, n := range m.notes {
		if n.ID == noteID && n.AccountID == accountID {
			m.notes = append(m.notes[:i], m.notes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrNoteNotFound, noteID)
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
