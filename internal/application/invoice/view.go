package invoice

import (
	"strings"
	"unicode"

	"github.com/invoicer/backend/internal/domain/invoice"
)

// View is an immutable picture of a session's document handed to the
// renderer and the exporter. It carries the derived totals so consumers
// never recompute them.
type View struct {
	OwnerID  string
	Document invoice.Document
	Totals   invoice.Totals
	Layout   invoice.LayoutMetrics
	Status   SaveStatus
}

// Filename returns the download name for an export, e.g. "Invoice_INV-001.pdf"
func (v View) Filename(format Format) string {
	number := sanitizeFilename(v.Document.InvoiceNumber)
	if number == "" {
		return "Invoice" + format.Extension()
	}
	return "Invoice_" + number + format.Extension()
}

func sanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "._")
}
