package printing

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	app "github.com/invoicer/backend/internal/application/invoice"
	"github.com/invoicer/backend/internal/domain/invoice"
)

// SpreadsheetExporter writes the invoice as CSV: a header block with the
// invoice and party details, the visible line items, then the totals.
// Amounts are plain numbers rounded to two places so spreadsheets can sum them.
type SpreadsheetExporter struct{}

// NewSpreadsheetExporter creates a CSV exporter
func NewSpreadsheetExporter() *SpreadsheetExporter {
	return &SpreadsheetExporter{}
}

// Export implements invoice.Exporter for CSV
func (e *SpreadsheetExporter) Export(_ context.Context, view app.View, format app.Format) (*app.Artifact, error) {
	if format != app.FormatCSV {
		return nil, NewRenderError(ErrCodeUnsupportedFormat, "spreadsheet exporter cannot export "+string(format), nil)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(csvRecords(view)); err != nil {
		return nil, NewRenderError(ErrCodeEncodeFailed, "failed to write csv", err)
	}

	return &app.Artifact{
		Filename:    view.Filename(format),
		ContentType: format.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}

func csvRecords(view app.View) [][]string {
	doc := view.Document
	totals := view.Totals.Rounded()
	money := func(d decimal.Decimal) string {
		return d.StringFixed(invoice.DisplayPlaces)
	}

	records := [][]string{
		{"Invoice Number", textCell(doc.InvoiceNumber)},
		{"Invoice Date", doc.FormattedDate()},
		{"Currency", textCell(doc.CurrencySymbol)},
	}
	records = append(records, partyRecords("From", doc.Sender)...)
	records = append(records, partyRecords("Bill To", doc.Client)...)
	records = append(records, []string{}, []string{"Description", "Quantity", "Unit Price", "Line Total"})

	records = append(records, lo.Map(doc.VisibleItems(), func(item invoice.LineItem, _ int) []string {
		return []string{
			textCell(item.Description),
			item.Quantity.String(),
			money(item.UnitPrice),
			money(item.LineTotal().Round(invoice.DisplayPlaces)),
		}
	})...)

	records = append(records,
		[]string{},
		[]string{"Subtotal", "", "", money(totals.Subtotal)},
		[]string{"Discount (" + doc.DiscountRatePercent.String() + "%)", "", "", money(totals.DiscountAmount.Neg())},
		[]string{"Tax (" + doc.TaxRatePercent.String() + "%)", "", "", money(totals.TaxAmount)},
		[]string{"Total", "", "", money(totals.GrandTotal)},
	)
	if doc.Notes != "" {
		records = append(records, []string{}, []string{"Notes", textCell(doc.Notes)})
	}
	return records
}

// partyRecords lists the filled-in party fields only
func partyRecords(label string, p invoice.PartyInfo) [][]string {
	fields := []lo.Tuple2[string, string]{
		lo.T2("Name", p.Name),
		lo.T2("Services", p.ServicesLine),
		lo.T2("Address", p.Address),
		lo.T2("Contact", p.Contact),
		lo.T2("Email", p.Email),
	}
	return lo.FilterMap(fields, func(f lo.Tuple2[string, string], _ int) ([]string, bool) {
		return []string{label + " " + f.A, textCell(f.B)}, f.B != ""
	})
}

// textCell quotes user text that a spreadsheet would read as a formula
func textCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

var _ app.Exporter = (*SpreadsheetExporter)(nil)
