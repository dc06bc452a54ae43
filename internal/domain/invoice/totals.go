package invoice

import (
	"github.com/shopspring/decimal"
)

// DisplayPlaces is the number of decimal places used when showing money
const DisplayPlaces = 2

// Totals are the derived amounts of a document
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	GrandTotal     decimal.Decimal
}

// ComputeTotals derives the totals from line items and percentage rates.
// Values are kept unrounded; round only when displaying.
func ComputeTotals(items []LineItem, discountRatePercent, taxRatePercent decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}

	t := Totals{
		Subtotal:       subtotal,
		DiscountAmount: subtotal.Mul(discountRatePercent).Shift(-2),
	}
	base := t.afterDiscount()
	t.TaxAmount = base.Mul(taxRatePercent).Shift(-2)
	t.GrandTotal = base.Add(t.TaxAmount)
	return t
}

// afterDiscount is the base the tax rate applies to
func (t Totals) afterDiscount() decimal.Decimal {
	return t.Subtotal.Sub(t.DiscountAmount)
}

// Rounded returns the totals rounded for display
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal:       t.Subtotal.Round(DisplayPlaces),
		DiscountAmount: t.DiscountAmount.Round(DisplayPlaces),
		TaxAmount:      t.TaxAmount.Round(DisplayPlaces),
		GrandTotal:     t.GrandTotal.Round(DisplayPlaces),
	}
}

// Equal reports whether both totals hold the same values
func (t Totals) Equal(other Totals) bool {
	return t.Subtotal.Equal(other.Subtotal) &&
		t.DiscountAmount.Equal(other.DiscountAmount) &&
		t.TaxAmount.Equal(other.TaxAmount) &&
		t.GrandTotal.Equal(other.GrandTotal)
}

// FormatMoney renders an amount with the currency symbol and two decimals,
// e.g. "$18.88". A negative amount keeps its sign before the symbol.
func FormatMoney(symbol string, amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-" + symbol + amount.Abs().StringFixed(DisplayPlaces)
	}
	return symbol + amount.StringFixed(DisplayPlaces)
}
