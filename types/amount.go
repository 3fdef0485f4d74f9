// Package types provides common types used across Fractional.
package types

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// Arithmetic sentinel errors. Callers treat these as fatal: a balance or
// price computation that wraps would silently break conservation invariants.
var (
	ErrAmountOverflow  = errors.New("types: amount overflow")
	ErrAmountUnderflow = errors.New("types: amount underflow")
)

// Amount is an unsigned settlement-currency amount in the smallest currency
// unit. It is 256 bits wide so that price-times-volume products stay exact at
// any realistic trade size. All arithmetic is checked — no wrapping, no
// saturation.
//
// The zero value is a usable zero amount. Amount is comparable with ==.
type Amount struct {
	n uint256.Int
}

// NewAmount creates an Amount from a uint64 value.
func NewAmount(v uint64) Amount {
	var a Amount
	a.n.SetUint64(v)
	return a
}

// ZeroAmount returns the zero amount.
func ZeroAmount() Amount { return Amount{} }

// ParseAmount parses a base-10 string into an Amount.
func ParseAmount(s string) (Amount, error) {
	n, err := uint256.FromDecimal(s)
	if err != nil {
		return Amount{}, fmt.Errorf("types: parse amount %q: %w", s, err)
	}
	return Amount{n: *n}, nil
}

// MustParseAmount is like ParseAmount but panics on error. Use for hardcoded
// amounts in tests and examples.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Arithmetic operations

// Add returns a+other, or ErrAmountOverflow if the sum does not fit.
func (a Amount) Add(other Amount) (Amount, error) {
	var sum Amount
	if _, overflow := sum.n.AddOverflow(&a.n, &other.n); overflow {
		return Amount{}, ErrAmountOverflow
	}
	return sum, nil
}

// Sub returns a-other, or ErrAmountUnderflow if other exceeds a.
func (a Amount) Sub(other Amount) (Amount, error) {
	var diff Amount
	if _, underflow := diff.n.SubOverflow(&a.n, &other.n); underflow {
		return Amount{}, ErrAmountUnderflow
	}
	return diff, nil
}

// Comparison methods

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool { return a.n.IsZero() }

// Equal returns true if both amounts are equal.
func (a Amount) Equal(other Amount) bool { return a.n.Eq(&other.n) }

// LessThan returns true if a is strictly less than other.
func (a Amount) LessThan(other Amount) bool { return a.n.Lt(&other.n) }

// GreaterThan returns true if a is strictly greater than other.
func (a Amount) GreaterThan(other Amount) bool { return a.n.Gt(&other.n) }

// Cmp returns -1, 0 or 1 depending on whether a is below, equal to, or above
// other.
func (a Amount) Cmp(other Amount) int { return a.n.Cmp(&other.n) }

// Conversion and formatting

// Uint64 returns the amount as a uint64 and whether it fits.
func (a Amount) Uint64() (uint64, bool) {
	if !a.n.IsUint64() {
		return 0, false
	}
	return a.n.Uint64(), true
}

// String returns the base-10 representation.
func (a Amount) String() string { return a.n.Dec() }

// MarshalText implements encoding.TextMarshaler.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.n.Dec()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(data []byte) error {
	parsed, err := ParseAmount(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalJSON implements json.Marshaler. Amounts serialize as decimal strings
// because 256-bit values do not survive JSON number parsing.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.n.Dec())
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("types: amount must be a decimal string: %w", err)
	}
	return a.UnmarshalText([]byte(s))
}

// SumAmounts calculates the checked sum of multiple amounts.
func SumAmounts(values ...Amount) (Amount, error) {
	var total Amount
	for _, v := range values {
		sum, err := total.Add(v)
		if err != nil {
			return Amount{}, err
		}
		total = sum
	}
	return total, nil
}
