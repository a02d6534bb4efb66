// journal/journal.go
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/rustyeddy/reflect/ledger"
	"github.com/rustyeddy/reflect/review"
	"github.com/shopspring/decimal"
)

// EquitySnapshot is a recorded portfolio valuation.
type EquitySnapshot struct {
	AccountID    string
	Time         time.Time
	Cash         decimal.Decimal
	MarketValue  decimal.Decimal
	TotalValue   decimal.Decimal
	UnrealizedPL decimal.Decimal
	RealizedPL   decimal.Decimal
	Unpriced     int // holdings left out of MarketValue
}

// Journal is the durable record of an account's trades. The ledger is
// rebuilt from Trades on startup.
type Journal interface {
	RecordTrade(ctx context.Context, rec ledger.TradeRecord) error
	RecordEquity(ctx context.Context, snap EquitySnapshot) error
	Trades(ctx context.Context, accountID string) ([]ledger.TradeRecord, error)
	Close() error
}

var ErrNoteNotFound = errors.New("note not found")

// NoteStore persists review notes. SaveNote replaces a note with the same id.
// DeleteNote fails with ErrNoteNotFound when the account has no such note.
type NoteStore interface {
	SaveNote(ctx context.Context, n review.Note) error
	Notes(ctx context.Context, accountID string) ([]review.Note, error)
	DeleteNote(ctx context.Context, accountID, noteID string) error
}

// Store is a Journal that also keeps review notes. Every backend in this
// package implements it.
type Store interface {
	Journal
	NoteStore
}
