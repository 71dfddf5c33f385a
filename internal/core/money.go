// Package core provides money parsing and handling utilities.
//
// Amounts are decimal magnitudes; the direction of a balance change is
// derived from the transaction kind and never stored as a negative amount.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user supplied decimal string into a positive amount.
//
// Both dot (12.34) and comma (12,34) separators are accepted. Signs are
// rejected, as are zero and malformed values.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, NewValidationError("amount", "amount is required")
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, NewValidationError("amount", "amount must be positive")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, NewValidationError("amount", "invalid amount %q", s)
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount rejects zero and negative magnitudes.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return NewValidationError("amount", "amount must be greater than zero")
	}
	return nil
}

// SignedAmount returns +amount for income and -amount for expenses.
func SignedAmount(kind Kind, amount decimal.Decimal) decimal.Decimal {
	if kind == Income {
		return amount
	}
	return amount.Neg()
}
