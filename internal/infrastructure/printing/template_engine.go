package printing

import (
	"bytes"
	"html/template"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	app "github.com/invoicer/backend/internal/application/invoice"
	"github.com/invoicer/backend/internal/domain/invoice"
)

// RenderMode selects between the on-screen preview and the printed page
type RenderMode int

const (
	// ModePreview includes the script that reveals the page-break marker
	ModePreview RenderMode = iota
	// ModePrint leaves the marker hidden
	ModePrint
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// TemplateEngine renders the invoice page from a view.
// It uses Go's html/template package so every user value is escaped.
type TemplateEngine struct {
	tmpl      *template.Template
	paperSize PaperSize
	lang      language.Tag
	heading   string
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithPaperSize sets the page size of the rendered document
func WithPaperSize(p PaperSize) TemplateEngineOption {
	return func(e *TemplateEngine) {
		if p.IsValid() {
			e.paperSize = p
		}
	}
}

// WithLocale sets the document language, e.g. "en-US". Unknown tags are ignored.
func WithLocale(locale string) TemplateEngineOption {
	return func(e *TemplateEngine) {
		if tag, err := language.Parse(locale); err == nil {
			e.lang = tag
		}
	}
}

// NewTemplateEngine creates a template engine using the embedded invoice template
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	e := &TemplateEngine{
		tmpl:      template.Must(parseInvoiceTemplate()),
		paperSize: PaperSizeA4,
		lang:      language.English,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.heading = cases.Upper(e.lang).String("Invoice")
	return e
}

// PaperSize returns the configured page size
func (e *TemplateEngine) PaperSize() PaperSize {
	return e.paperSize
}

type partyData struct {
	Label string
	invoice.PartyInfo
}

type rowData struct {
	Description string
	Quantity    string
	UnitPrice   string
	LineTotal   string
}

type pageData struct {
	Lang        string
	Title       string
	Heading     string
	Interactive bool

	PageSize   template.CSS
	PageWidth  template.CSS
	PageHeight template.CSS
	ThemeColor template.CSS

	InvoiceNumber string
	InvoiceDate   string
	LogoSrc       template.URL
	LogoWidth     int

	Sender *partyData
	Client *partyData
	Rows   []rowData

	Subtotal       string
	DiscountRate   string
	DiscountAmount string
	TaxRate        string
	TaxAmount      string
	GrandTotal     string
	Notes          string
}

// RenderHTML renders the invoice page for a view
func (e *TemplateEngine) RenderHTML(view app.View, mode RenderMode) (string, error) {
	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, e.pageData(view, mode)); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute invoice template", err)
	}
	return buf.String(), nil
}

func (e *TemplateEngine) pageData(view app.View, mode RenderMode) pageData {
	doc := view.Document
	symbol := doc.CurrencySymbol
	totals := view.Totals
	width, height := e.paperSize.Dimensions()

	return pageData{
		Lang:        e.lang.String(),
		Title:       strings.TrimSuffix(view.Filename(app.FormatPDF), app.FormatPDF.Extension()),
		Heading:     e.heading,
		Interactive: mode == ModePreview,

		PageSize:   template.CSS(e.paperSize.cssPageSize()),
		PageWidth:  template.CSS(formatMM(width)),
		PageHeight: template.CSS(formatMM(height)),
		ThemeColor: template.CSS(themeColor(doc.ThemeColor)),

		InvoiceNumber: doc.InvoiceNumber,
		InvoiceDate:   doc.FormattedDate(),
		LogoSrc:       logoSource(doc.Logo),
		LogoWidth:     doc.LogoWidth,

		Sender: party("From", doc.Sender),
		Client: party("Bill To", doc.Client),
		Rows: lo.Map(doc.VisibleItems(), func(item invoice.LineItem, _ int) rowData {
			return rowData{
				Description: item.Description,
				Quantity:    item.Quantity.String(),
				UnitPrice:   invoice.FormatMoney(symbol, item.UnitPrice),
				LineTotal:   invoice.FormatMoney(symbol, item.LineTotal()),
			}
		}),

		Subtotal:       invoice.FormatMoney(symbol, totals.Subtotal),
		DiscountRate:   doc.DiscountRatePercent.String(),
		DiscountAmount: "-" + invoice.FormatMoney(symbol, totals.DiscountAmount),
		TaxRate:        doc.TaxRatePercent.String(),
		TaxAmount:      "+" + invoice.FormatMoney(symbol, totals.TaxAmount),
		GrandTotal:     invoice.FormatMoney(symbol, totals.GrandTotal),
		Notes:          doc.Notes,
	}
}

// party returns nil when every field is blank so the block is hidden
func party(label string, info invoice.PartyInfo) *partyData {
	if info.IsEmpty() {
		return nil
	}
	return &partyData{Label: label, PartyInfo: info}
}

// themeColor accepts hex colors only; anything else falls back to the default
func themeColor(c string) string {
	if hexColor.MatchString(c) {
		return c
	}
	return invoice.DefaultThemeColor
}

// logoSource trusts image data URLs and http(s) URLs, dropping anything else
func logoSource(logo invoice.Logo) template.URL {
	src := logo.Source()
	switch {
	case strings.HasPrefix(src, "data:image/"),
		strings.HasPrefix(src, "https://"),
		strings.HasPrefix(src, "http://"),
		strings.HasPrefix(src, "/"):
		return template.URL(src)
	}
	return ""
}

func formatMM(mm float64) string {
	return strings.TrimRight(strings.TrimRight(strconv.FormatFloat(mm, 'f', 1, 64), "0"), ".") + "mm"
}
