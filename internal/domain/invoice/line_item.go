package invoice

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one row of the invoice
type LineItem struct {
	ID          uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// LineTotal returns quantity × unit price, unrounded
func (i LineItem) LineTotal() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// IsVisible reports whether the row is shown in the preview.
// Rows with no description, quantity and price are skipped.
func (i LineItem) IsVisible() bool {
	return i.Description != "" || !i.Quantity.IsZero() || !i.UnitPrice.IsZero()
}

// newBlankItem returns the row added to a fresh document
func newBlankItem(id uuid.UUID) LineItem {
	return LineItem{
		ID:        id,
		Quantity:  decimal.NewFromInt(DefaultQuantity),
		UnitPrice: decimal.Zero,
	}
}
