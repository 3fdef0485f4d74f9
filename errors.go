package fractional

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound           = errors.New("fractional: not found")
	ErrAlreadyExists      = errors.New("fractional: already exists")
	ErrUnauthorized       = errors.New("fractional: unauthorized")
	ErrAlreadyInitialized = errors.New("fractional: ledger already initialized")
	ErrNotInitialized     = errors.New("fractional: ledger not initialized")

	// Token ledger errors
	ErrInvalidAmount         = errors.New("fractional: amount must be positive")
	ErrSelfTransfer          = errors.New("fractional: cannot transfer to self")
	ErrInsufficientBalance   = errors.New("fractional: insufficient balance")
	ErrInsufficientAllowance = errors.New("fractional: insufficient allowance")
	ErrAssetNotFound         = errors.New("fractional: asset not found")
	ErrLengthMismatch        = errors.New("fractional: argument slice lengths differ")
	ErrNoRecipients          = errors.New("fractional: no recipients specified")

	// Settlement errors
	ErrProposalNotFound   = errors.New("fractional: sale proposal not found")
	ErrProposalExists     = errors.New("fractional: active sale proposal already exists")
	ErrProposalNotActive  = errors.New("fractional: sale proposal is not active")
	ErrProposalExpired    = errors.New("fractional: sale proposal has expired")
	ErrProposalNotExpired = errors.New("fractional: sale proposal has not expired")
	ErrWrongCounterparty  = errors.New("fractional: caller is not the proposal counterparty")
	ErrTermsMismatch      = errors.New("fractional: expected terms do not match proposal")
	ErrDurationOutOfRange = errors.New("fractional: sale duration outside configured bounds")
	ErrInsufficientFunds  = errors.New("fractional: insufficient settlement-currency funds")

	// Trade history errors
	ErrTradeNotFound = errors.New("fractional: trade not found")

	// Arithmetic errors. Always fatal to the operation, never recovered:
	// wrapping or saturating would break supply conservation.
	ErrArithmetic = errors.New("fractional: arithmetic overflow or underflow")

	// Store errors
	ErrStoreClosed = errors.New("fractional: store is closed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("fractional: validation failed for %s: %s", e.Field, e.Message)
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAssetNotFound) ||
		errors.Is(err, ErrProposalNotFound) ||
		errors.Is(err, ErrTradeNotFound)
}

// IsAuthorizationError returns true if the error is an authorization failure.
func IsAuthorizationError(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrWrongCounterparty) ||
		errors.Is(err, ErrInsufficientAllowance)
}

// IsProposalError returns true if the error relates to the sale-proposal
// lifecycle.
func IsProposalError(err error) bool {
	return errors.Is(err, ErrProposalNotFound) ||
		errors.Is(err, ErrProposalExists) ||
		errors.Is(err, ErrProposalNotActive) ||
		errors.Is(err, ErrProposalExpired) ||
		errors.Is(err, ErrProposalNotExpired) ||
		errors.Is(err, ErrTermsMismatch)
}
