// Package core provides the ledger domain model and input validation.
//
// This file contains amount parsing. Amounts are decimal values with
// currency precision (two fractional digits).
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AmountPlaces is the number of fractional digits kept for amounts.
const AmountPlaces = 2

// MaxAmount guards against input mistakes such as pasted account numbers.
var MaxAmount = decimal.NewFromInt(1_000_000_000)

// ParseAmount converts raw user text to a normalized amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Values
// are rounded half-up on the third fractional digit. The bounds are checked
// on the value as typed, and once more after rounding so that an input
// collapsing to 0.00 is rejected.
//
// Examples:
//
//	ParseAmount("12,5")   -> 12.50
//	ParseAmount("12.345") -> 12.35
//	ParseAmount("0")      -> ErrNonPositive
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, &ValidationError{Field: FieldAmount, Reason: ReasonEmptyInput}
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: FieldAmount, Reason: ReasonNotANumber}
	}
	if !d.IsPositive() {
		return decimal.Zero, &ValidationError{Field: FieldAmount, Reason: ReasonNonPositive}
	}
	if d.GreaterThan(MaxAmount) {
		return decimal.Zero, &ValidationError{Field: FieldAmount, Reason: ReasonTooLarge}
	}

	d = RoundAmount(d)
	if !d.IsPositive() {
		return decimal.Zero, &ValidationError{Field: FieldAmount, Reason: ReasonNonPositive}
	}
	return d, nil
}

// RoundAmount rounds half away from zero to currency precision.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountPlaces)
}

// AmountFromFloat converts a value read from the REAL storage column.
func AmountFromFloat(f float64) decimal.Decimal {
	return RoundAmount(decimal.NewFromFloat(f))
}
