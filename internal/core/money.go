// Package core holds the expense entity, its validation rules, and the
// aggregation engine.
//
// Monetary amounts are carried as decimal.Decimal end to end. Sums are exact;
// rounding (2 decimal places, half away from zero) happens once, at the
// output boundary.
package core

import (
	"errors"

	"github.com/shopspring/decimal"
)

// MaxCost is the upper bound for a single expense.
var MaxCost = decimal.NewFromInt(100000)

var ErrInvalidCost = errors.New("must be greater than 0 and at most 100000")

// ValidateCost checks the cost bounds shared by create and update.
func ValidateCost(c decimal.Decimal) error {
	if c.Sign() <= 0 || c.GreaterThan(MaxCost) {
		return ErrInvalidCost
	}
	return nil
}

// RoundCost applies the write-time 2-decimal rounding.
func RoundCost(c decimal.Decimal) decimal.Decimal {
	return c.Round(2)
}

// DisplayAmount converts an exact amount to the float emitted on the wire.
func DisplayAmount(c decimal.Decimal) float64 {
	f, _ := c.Round(2).Float64()
	return f
}

// ParseCost parses a decimal string as received from the wire or the store.
func ParseCost(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
