// Package money provides the canonical fixed-point amount used for balances,
// transaction amounts and budgets. Amounts are stored as int64 minor units
// (cents) and cross the JSON boundary as plain decimal numbers.
package money

import (
	"bytes"
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fraction digits carried by an Amount.
const Scale = 2

// ErrInvalidAmount is returned when a value cannot be represented as an Amount.
var ErrInvalidAmount = errors.New("invalid amount")

// MaxAmount is the largest magnitude an Amount or a balance may hold:
// ten trillion in major units. It leaves int64 headroom for summing amounts
// in SQL.
const MaxAmount Amount = 1_000_000_000_000_000

var (
	maxAmount = decimal.NewFromInt(int64(MaxAmount))
	minAmount = maxAmount.Neg()
)

// Amount is a monetary value in minor units.
type Amount int64

// Zero is the zero amount.
const Zero Amount = 0

// Parse converts a decimal string such as "12.34" into an Amount, rounding
// half away from zero to two fraction digits. A single decimal comma followed
// by at most two digits is accepted ("12,5"); anything that reads as a
// thousands separator ("1,000") is rejected.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.Contains(s, ",") {
		whole, frac, _ := strings.Cut(s, ",")
		if strings.ContainsAny(whole, ".,") || strings.Contains(frac, ",") || len(frac) == 0 || len(frac) > Scale {
			return 0, ErrInvalidAmount
		}
		s = whole + "." + frac
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return FromDecimal(d)
}

// FromFloat converts a float into an Amount. NaN and infinities are rejected.
func FromFloat(f float64) (Amount, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidAmount
	}
	return FromDecimal(decimal.NewFromFloat(f))
}

// FromDecimal converts a decimal into an Amount. Values beyond MaxAmount in
// either direction are rejected.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	minor := d.Round(Scale).Shift(Scale)
	if minor.GreaterThan(maxAmount) || minor.LessThan(minAmount) {
		return 0, ErrInvalidAmount
	}
	return Amount(minor.IntPart()), nil
}

// Cents returns the amount in minor units.
func (a Amount) Cents() int64 { return int64(a) }

// Decimal returns the amount as a decimal with two fraction digits.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -Scale)
}

// Float64 returns the amount as a float. Use it for presentation only.
func (a Amount) Float64() float64 {
	f, _ := a.Decimal().Float64()
	return f
}

// String formats the amount with exactly two fraction digits.
func (a Amount) String() string {
	return a.Decimal().StringFixed(Scale)
}

// Neg returns -a.
func (a Amount) Neg() Amount { return -a }

// IsPositive reports whether a > 0.
func (a Amount) IsPositive() bool { return a > 0 }

// InRange reports whether |a| <= MaxAmount.
func (a Amount) InRange() bool { return a >= -MaxAmount && a <= MaxAmount }

// MarshalJSON writes the amount as a JSON number, e.g. 12.50.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
