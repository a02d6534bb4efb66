package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInvalidPrice         = errors.New("invalid price")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrDuplicateTrade       = errors.New("duplicate trade id")
)

// FundsError reports a buy that costs more than the available cash.
// Affordable is filled in by callers that know the quote.
type FundsError struct {
	Instrument string
	Required   decimal.Decimal
	Available  decimal.Decimal
	Affordable int64 // whole shares the cash covers
}

func (e *FundsError) Error() string {
	msg := fmt.Sprintf("insufficient funds: buying %s costs %s, cash is %s (short %s)",
		e.Instrument, e.Required, e.Available, e.Shortfall())
	if e.Affordable > 0 {
		msg += fmt.Sprintf(", max %d shares", e.Affordable)
	}
	return msg
}

func (e *FundsError) Unwrap() error { return ErrInsufficientFunds }

// Shortfall is the extra cash needed for the buy to succeed.
func (e *FundsError) Shortfall() decimal.Decimal { return e.Required.Sub(e.Available) }

// HoldingsError reports a sell larger than the position.
type HoldingsError struct {
	Instrument string
	Requested  int64
	Held       int64
}

func (e *HoldingsError) Error() string {
	if e.Held == 0 {
		return fmt.Sprintf("insufficient holdings: no position in %s", e.Instrument)
	}
	return fmt.Sprintf("insufficient holdings: selling %d %s, holding %d (short %d)",
		e.Requested, e.Instrument, e.Held, e.Requested-e.Held)
}

func (e *HoldingsError) Unwrap() error { return ErrInsufficientHoldings }
