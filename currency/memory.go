package currency

import (
	"context"
	"sync"

	"github.com/openfract/fractional/id"
	"github.com/openfract/fractional/types"
)

// compile-time interface check
var _ Ledger = (*MemoryLedger)(nil)

// MemoryLedger is an in-process settlement-currency ledger. Suitable for
// tests and for hosts that settle in an internal unit of account.
type MemoryLedger struct {
	mu       sync.RWMutex
	balances map[id.AccountID]types.Amount
}

// NewMemoryLedger creates an empty in-memory currency ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[id.AccountID]types.Amount),
	}
}

// Deposit credits an account. Hosts use it to fund accounts; there is no
// corresponding withdrawal because Fractional only ever moves funds between
// accounts.
func (m *MemoryLedger) Deposit(_ context.Context, account id.AccountID, amount types.Amount) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := m.balances[account].Add(amount)
	if err != nil {
		return err
	}
	m.balances[account] = next
	return nil
}

// Balance returns the account's balance; unknown accounts hold zero.
func (m *MemoryLedger) Balance(_ context.Context, account id.AccountID) (types.Amount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.balances[account], nil
}

// Transfer moves amount from one account to another. Zero-amount and self
// transfers are rejected.
func (m *MemoryLedger) Transfer(_ context.Context, from, to id.AccountID, amount types.Amount) error {
	if amount.IsZero() || from == to {
		return ErrInvalidTransfer
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	fromBal := m.balances[from]
	if fromBal.LessThan(amount) {
		return ErrInsufficientFunds
	}

	newFrom, err := fromBal.Sub(amount)
	if err != nil {
		return err
	}
	newTo, err := m.balances[to].Add(amount)
	if err != nil {
		return err
	}

	if newFrom.IsZero() {
		delete(m.balances, from)
	} else {
		m.balances[from] = newFrom
	}
	m.balances[to] = newTo
	return nil
}
