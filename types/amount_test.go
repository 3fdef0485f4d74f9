package types

import (
	"encoding/json"
	"testing"
)

func TestAmountConstructors(t *testing.T) {
	tests := []struct {
		name   string
		amount Amount
		str    string
	}{
		{"Zero", ZeroAmount(), "0"},
		{"Uint64", NewAmount(100000000), "100000000"},
		{"Parsed", MustParseAmount("340282366920938463463374607431768211456"), "340282366920938463463374607431768211456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.amount.String() != tt.str {
				t.Errorf("String: got %s, want %s", tt.amount.String(), tt.str)
			}
		})
	}
}

func TestAmountArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() (Amount, error)
		expected Amount
	}{
		{"Add", func() (Amount, error) { return NewAmount(100).Add(NewAmount(200)) }, NewAmount(300)},
		{"Sub", func() (Amount, error) { return NewAmount(500).Sub(NewAmount(200)) }, NewAmount(300)},
		{"SubToZero", func() (Amount, error) { return NewAmount(500).Sub(NewAmount(500)) }, ZeroAmount()},
		{"Sum", func() (Amount, error) { return SumAmounts(NewAmount(1), NewAmount(2), NewAmount(3)) }, NewAmount(6)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("got %s, want %s", got.String(), tt.expected.String())
			}
		})
	}
}

func TestAmountOverflow(t *testing.T) {
	// 2^256-1: the largest representable amount.
	max := MustParseAmount("115792089237316195423570985008687907853269984665640564039457584007913129639935")

	if _, err := max.Add(NewAmount(1)); err != ErrAmountOverflow {
		t.Errorf("expected ErrAmountOverflow, got %v", err)
	}
	if _, err := ZeroAmount().Sub(NewAmount(1)); err != ErrAmountUnderflow {
		t.Errorf("expected ErrAmountUnderflow, got %v", err)
	}
}

func TestAmountComparison(t *testing.T) {
	a, b := NewAmount(100), NewAmount(200)

	if !a.LessThan(b) {
		t.Error("100 should be less than 200")
	}
	if !b.GreaterThan(a) {
		t.Error("200 should be greater than 100")
	}
	if !a.Equal(NewAmount(100)) {
		t.Error("100 should equal 100")
	}
	if a.Cmp(b) != -1 || b.Cmp(a) != 1 || a.Cmp(a) != 0 {
		t.Error("Cmp disagrees with ordering")
	}
	if a != NewAmount(100) {
		t.Error("Amount should be comparable with ==")
	}
}

func TestAmountUint64(t *testing.T) {
	v, ok := NewAmount(42).Uint64()
	if !ok || v != 42 {
		t.Errorf("expected (42, true), got (%d, %v)", v, ok)
	}

	if _, ok := MustParseAmount("18446744073709551616").Uint64(); ok {
		t.Error("2^64 should not fit in a uint64")
	}
}

func TestAmountJSONRoundTrip(t *testing.T) {
	original := MustParseAmount("123456789012345678901234567890")

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `"123456789012345678901234567890"` {
		t.Errorf("unexpected JSON: %s", data)
	}

	var restored Amount
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !restored.Equal(original) {
		t.Errorf("round-trip mismatch: %s != %s", restored.String(), original.String())
	}
}
