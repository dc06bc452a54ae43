package invoice

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount limits. Anything outside them is treated as malformed input.
const (
	MaxIntegerDigits = 15
	MaxScale         = 30
)

// ParseAmount parses numeric text typed into the form.
// Empty, malformed or out of range input yields zero; it never fails.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return BoundAmount(d)
}

// BoundAmount returns d, or zero when d has more than MaxIntegerDigits
// integer digits or more than MaxScale fractional digits.
// Only the exponent and digit count are inspected, so "1e100000000" is
// rejected without expanding it.
func BoundAmount(d decimal.Decimal) decimal.Decimal {
	exp := int(d.Exponent())
	if exp < -MaxScale || exp > MaxIntegerDigits {
		return decimal.Zero
	}
	if d.NumDigits()+exp > MaxIntegerDigits {
		return decimal.Zero
	}
	return d
}

// clampNonNegative returns zero for negative or out of range values
func clampNonNegative(d decimal.Decimal) decimal.Decimal {
	d = BoundAmount(d)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// parseNonNegative parses numeric text and clamps it to >= 0
func parseNonNegative(s string) decimal.Decimal {
	return clampNonNegative(ParseAmount(s))
}

func clampLogoWidth(px int) int {
	return min(max(px, 0), MaxLogoWidth)
}
