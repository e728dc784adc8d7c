// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Quantity is a product quantity. Dairy goods are sold in fractional
// units (litres, crates of varying fill), so quantities share the same
// decimal representation as monetary values.
type Quantity = decimal.Decimal

// Rate is a fractional rate such as a tax rate (0.1925 for 19.25%).
type Rate = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewQuantity creates a Quantity from an integer unit count.
func NewQuantity(n int64) Quantity {
	return decimal.NewFromInt(n)
}

// MustQuantity creates a Quantity from a string, panics on error.
// Use only for constants and tests.
func MustQuantity(s string) Quantity {
	return MustMoney(s)
}

// MustRate creates a Rate from a string, panics on error.
func MustRate(s string) Rate {
	return MustMoney(s)
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}
