package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

// Defaults applied to new documents and to snapshot fields that are missing
const (
	DefaultInvoiceNumber  = "#INV-001"
	DefaultCurrencySymbol = "$"
	DefaultThemeColor     = "#3b82f6"
	DefaultLogoWidth      = 100
	MaxLogoWidth          = 1000
	DefaultQuantity       = 1

	// DateLayout is the calendar date format used in snapshots and form input
	DateLayout = "2006-01-02"
)

// Document is the invoice aggregate: everything the form collects
type Document struct {
	InvoiceNumber       string
	InvoiceDate         time.Time // zero means unset
	CurrencySymbol      string
	Sender              PartyInfo
	Client              PartyInfo
	Items               []LineItem
	DiscountRatePercent decimal.Decimal
	TaxRatePercent      decimal.Decimal
	Notes               string
	ThemeColor          string
	LogoWidth           int
	Logo                Logo
}

// Totals computes the derived amounts of the document
func (d *Document) Totals() Totals {
	return ComputeTotals(d.Items, d.DiscountRatePercent, d.TaxRatePercent)
}

// FormattedDate returns the invoice date as YYYY-MM-DD, or "" when unset
func (d *Document) FormattedDate() string {
	if d.InvoiceDate.IsZero() {
		return ""
	}
	return d.InvoiceDate.Format(DateLayout)
}

// VisibleItems returns the rows shown in the preview, in order
func (d *Document) VisibleItems() []LineItem {
	visible := make([]LineItem, 0, len(d.Items))
	for _, item := range d.Items {
		if item.IsVisible() {
			visible = append(visible, item)
		}
	}
	return visible
}

// Clone returns a copy that shares no mutable state with d
func (d *Document) Clone() Document {
	c := *d
	c.Items = make([]LineItem, len(d.Items))
	copy(c.Items, d.Items)
	return c
}

// itemIndex returns the position of the item with the given id, or -1
func (d *Document) itemIndex(id string) int {
	for i, item := range d.Items {
		if item.ID.String() == id {
			return i
		}
	}
	return -1
}

// parseDate parses a calendar date; malformed input yields the zero time
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, day := t.Date()
		return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	}
	return time.Time{}
}

// today truncates t to a UTC calendar date
func today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
