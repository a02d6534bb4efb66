package ledger

import "sync"

// Account owns one Ledger for the lifetime of a session. Writers are
// serialised; readers get a consistent copy and never see a ledger mid-update.
type Account struct {
	ID       string
	Currency string

	mu     sync.RWMutex
	ledger *Ledger
}

func NewAccount(id, currency string, l *Ledger) *Account {
	return &Account{ID: id, Currency: currency, ledger: l}
}

// View returns a private copy of the ledger as of now.
func (a *Account) View() *Ledger {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ledger.Clone()
}

// Read runs fn against the live ledger under the read lock. fn must not
// retain or modify the ledger.
func (a *Account) Read(fn func(*Ledger)) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	fn(a.ledger)
}

// Update runs fn against a copy of the ledger under the write lock and commits
// the copy only if fn succeeds. On error the account is unchanged.
func (a *Account) Update(fn func(*Ledger) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.ledger.Clone()
	if err := fn(next); err != nil {
		return err
	}
	a.ledger = next
	return nil
}
