package invoice

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(desc, qty, price string) LineItem {
	return LineItem{ID: uuid.New(), Description: desc, Quantity: dec(qty), UnitPrice: dec(price)}
}

func TestComputeTotals(t *testing.T) {
	t.Run("widget with discount and tax", func(t *testing.T) {
		totals := ComputeTotals([]LineItem{item("Widget", "2", "9.99")}, dec("10"), dec("5"))

		assert.True(t, dec("19.98").Equal(totals.Subtotal), totals.Subtotal.String())
		assert.True(t, dec("1.998").Equal(totals.DiscountAmount), totals.DiscountAmount.String())
		assert.True(t, dec("17.982").Equal(totals.afterDiscount()), totals.afterDiscount().String())
		assert.True(t, dec("0.8991").Equal(totals.TaxAmount), totals.TaxAmount.String())
		assert.True(t, dec("18.8811").Equal(totals.GrandTotal), totals.GrandTotal.String())
		assert.Equal(t, "$18.88", FormatMoney("$", totals.GrandTotal))
		assert.Equal(t, "18.88", totals.Rounded().GrandTotal.StringFixed(DisplayPlaces))
	})

	t.Run("empty item list yields zero totals", func(t *testing.T) {
		totals := ComputeTotals(nil, dec("10"), dec("5"))

		assert.True(t, totals.Subtotal.IsZero())
		assert.True(t, totals.DiscountAmount.IsZero())
		assert.True(t, totals.TaxAmount.IsZero())
		assert.True(t, totals.GrandTotal.IsZero())
	})

	t.Run("zero rates make grand total equal subtotal", func(t *testing.T) {
		items := []LineItem{item("a", "3", "1.5"), item("b", "1", "0.25")}
		totals := ComputeTotals(items, decimal.Zero, decimal.Zero)

		assert.True(t, dec("4.75").Equal(totals.Subtotal))
		assert.True(t, totals.Subtotal.Equal(totals.GrandTotal))
		assert.True(t, totals.DiscountAmount.IsZero())
		assert.True(t, totals.TaxAmount.IsZero())
	})

	t.Run("is idempotent", func(t *testing.T) {
		items := []LineItem{item("a", "7", "0.1"), item("b", "3", "0.3333")}
		first := ComputeTotals(items, dec("12.5"), dec("19"))
		second := ComputeTotals(items, dec("12.5"), dec("19"))

		assert.True(t, first.Equal(second))
		assert.Equal(t, first.GrandTotal.String(), second.GrandTotal.String())
	})

	t.Run("grand total identity holds", func(t *testing.T) {
		items := []LineItem{item("a", "13", "17.17"), item("b", "0.5", "3")}
		totals := ComputeTotals(items, dec("33"), dec("7.25"))

		expected := totals.Subtotal.Sub(totals.DiscountAmount).Add(totals.TaxAmount)
		assert.True(t, expected.Equal(totals.GrandTotal))
	})
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name   string
		symbol string
		amount decimal.Decimal
		want   string
	}{
		{"rounds half up", "$", dec("1.005"), "$1.01"},
		{"pads decimals", "€", dec("3"), "€3.00"},
		{"negative keeps sign first", "$", dec("-2.5"), "-$2.50"},
		{"empty symbol", "", dec("0"), "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(tt.symbol, tt.amount))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "0"},
		{"  ", "0"},
		{"abc", "0"},
		{"12abc", "0"},
		{"9.99", "9.99"},
		{" 2 ", "2"},
		{"-3", "-3"},
		{"1e100000000", "0"},
		{"1e-100000000", "0"},
		{"1e15", "0"},
		{"999999999999999.99", "999999999999999.99"},
		{"0." + strings.Repeat("1", MaxScale), "0." + strings.Repeat("1", MaxScale)},
		{"0." + strings.Repeat("1", MaxScale+1), "0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseAmount(tt.in)
			assert.True(t, dec(tt.want).Equal(got), got.String())
		})
	}
}
