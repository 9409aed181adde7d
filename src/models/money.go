package models

import "github.com/shopspring/decimal"

// Monetary values are decimal.Decimal in memory and integer cents in sqlite.
// Arithmetic pushed into SQL (relative balance updates) stays exact on
// integers; TEXT columns would be coerced to float by sqlite.

var hundred = decimal.NewFromInt(100)

// Cents converts a decimal amount to integer cents, rounding half-up to two
// decimal places.
func Cents(d decimal.Decimal) int64 {
	return d.Round(2).Mul(hundred).IntPart()
}

// FromCents converts integer cents back to a two-decimal amount.
func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}
