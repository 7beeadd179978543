// Package money converts between the decimal amounts customers type and the
// int64 minor currency units the ledger stores. Balances never touch binary
// floating point.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrMalformedAmount indicates the amount string is not a valid decimal with
// at most two fraction digits.
var ErrMalformedAmount = errors.New("malformed amount")

// Parse converts a decimal string such as "500.00" into minor currency units.
// It rejects anything with sub-cent precision.
func Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}
	minor := d.Shift(2)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("%w: %q has sub-cent precision", ErrMalformedAmount, s)
	}
	if !minor.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %q out of range", ErrMalformedAmount, s)
	}
	return minor.IntPart(), nil
}

// Format renders minor currency units as a two-decimal string.
func Format(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

// ParseRate parses a non-negative percentage such as "7.25". Rates keep their
// full decimal precision since they are stored, not posted.
func ParseRate(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}
	return d, nil
}
