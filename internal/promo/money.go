package promo

import "github.com/shopspring/decimal"

// Money represents a monetary value stored in minor units.
type Money = int64

const minorUnitExponent = 2

// ParseMoney converts a decimal string (as stored in numeric columns or
// received on the wire) into minor units. Empty, unparsable, or negative
// values coerce to 0 so a single malformed row never aborts pricing a cart.
func ParseMoney(value string) Money {
	if value == "" {
		return 0
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0
	}
	minor := d.Shift(minorUnitExponent).Round(0).IntPart()
	if minor < 0 {
		return 0
	}
	return minor
}

// FormatMoney renders minor units as a fixed two-decimal string.
func FormatMoney(amount Money) string {
	return decimal.New(amount, -minorUnitExponent).StringFixed(2)
}
