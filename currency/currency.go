// Package currency defines the settlement-currency ledger the trading
// protocol pays through. The ledger itself is an external collaborator —
// Fractional only moves balances on it, it never holds currency state of its
// own — so the package exposes an interface plus an in-memory implementation
// for tests and embedded hosts.
package currency

import (
	"context"
	"errors"

	"github.com/openfract/fractional/id"
	"github.com/openfract/fractional/types"
)

var (
	// ErrInsufficientFunds is returned by Transfer when the source account
	// does not cover the amount.
	ErrInsufficientFunds = errors.New("currency: insufficient funds")

	// ErrInvalidTransfer is returned for zero-amount or self transfers.
	ErrInvalidTransfer = errors.New("currency: invalid transfer")
)

// Ledger is the payment medium exchanged for asset units during a trade.
type Ledger interface {
	Balance(ctx context.Context, account id.AccountID) (types.Amount, error)
	Transfer(ctx context.Context, from, to id.AccountID, amount types.Amount) error
}
