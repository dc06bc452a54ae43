package dto

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	app "github.com/invoicer/backend/internal/application/invoice"
	"github.com/invoicer/backend/internal/domain/invoice"
)

// SetFieldsRequest applies several field edits as one change.
// Keys are dotted field paths such as "sender.name" or "items.<id>.quantity".
type SetFieldsRequest struct {
	Fields map[string]string `json:"fields" binding:"required,min=1"`
}

// AddItemRequest appends a line item. An empty body appends a blank row.
type AddItemRequest struct {
	Description string           `json:"description" binding:"max=500"`
	Quantity    *decimal.Decimal `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// IsBlank returns true if the request carries no item data
func (r AddItemRequest) IsBlank() bool {
	return r.Description == "" && r.Quantity == nil && r.UnitPrice == nil
}

// ItemIDRequest binds the item id path parameter
type ItemIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// PartyResponse is the sender or client block of an invoice
type PartyResponse struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Contact  string `json:"contact"`
	Email    string `json:"email"`
	Services string `json:"services"`
}

// LineItemResponse is one invoice row
type LineItemResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Visible     bool            `json:"visible"`
}

// LogoResponse describes the invoice logo
type LogoResponse struct {
	Kind   string `json:"kind"`
	Source string `json:"source"`
	Width  int    `json:"width"`
}

// TotalsResponse holds the derived amounts rounded for display
type TotalsResponse struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	Formatted      FormattedTotals `json:"formatted"`
}

// FormattedTotals are the totals as shown on the invoice
type FormattedTotals struct {
	Subtotal       string `json:"subtotal"`
	DiscountAmount string `json:"discount_amount"`
	TaxAmount      string `json:"tax_amount"`
	GrandTotal     string `json:"grand_total"`
}

// LayoutResponse summarizes the document size
type LayoutResponse struct {
	ItemCount          int `json:"item_count"`
	VisibleItemCount   int `json:"visible_item_count"`
	LongestDescription int `json:"longest_description"`
	NotesLength        int `json:"notes_length"`
	TotalTextLength    int `json:"total_text_length"`
}

// InvoiceResponse is the document of the requesting owner
type InvoiceResponse struct {
	InvoiceNumber  string             `json:"invoice_number"`
	InvoiceDate    string             `json:"invoice_date"`
	CurrencySymbol string             `json:"currency_symbol"`
	ThemeColor     string             `json:"theme_color"`
	Sender         PartyResponse      `json:"sender"`
	Client         PartyResponse      `json:"client"`
	Items          []LineItemResponse `json:"items"`
	DiscountRate   decimal.Decimal    `json:"discount_rate"`
	TaxRate        decimal.Decimal    `json:"tax_rate"`
	Notes          string             `json:"notes"`
	Logo           *LogoResponse      `json:"logo,omitempty"`
	Totals         TotalsResponse     `json:"totals"`
	Layout         LayoutResponse     `json:"layout"`
	SaveStatus     string             `json:"save_status"`
}

// AddItemResponse returns the new item id with the updated document
type AddItemResponse struct {
	ItemID  string          `json:"item_id"`
	Invoice InvoiceResponse `json:"invoice"`
}

// SaveResponse reports the save status after a flush
type SaveResponse struct {
	SaveStatus string `json:"save_status"`
}

// NewInvoiceResponse converts a session view to the API representation
func NewInvoiceResponse(view app.View) InvoiceResponse {
	doc := view.Document
	totals := view.Totals.Rounded()
	symbol := doc.CurrencySymbol

	resp := InvoiceResponse{
		InvoiceNumber:  doc.InvoiceNumber,
		InvoiceDate:    doc.FormattedDate(),
		CurrencySymbol: symbol,
		ThemeColor:     doc.ThemeColor,
		Sender:         newPartyResponse(doc.Sender),
		Client:         newPartyResponse(doc.Client),
		Items: lo.Map(doc.Items, func(item invoice.LineItem, _ int) LineItemResponse {
			return LineItemResponse{
				ID:          item.ID.String(),
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				LineTotal:   item.LineTotal().Round(invoice.DisplayPlaces),
				Visible:     item.IsVisible(),
			}
		}),
		DiscountRate: doc.DiscountRatePercent,
		TaxRate:      doc.TaxRatePercent,
		Notes:        doc.Notes,
		Totals: TotalsResponse{
			Subtotal:       totals.Subtotal,
			DiscountAmount: totals.DiscountAmount,
			TaxAmount:      totals.TaxAmount,
			GrandTotal:     totals.GrandTotal,
			Formatted: FormattedTotals{
				Subtotal:       invoice.FormatMoney(symbol, totals.Subtotal),
				DiscountAmount: "-" + invoice.FormatMoney(symbol, totals.DiscountAmount),
				TaxAmount:      "+" + invoice.FormatMoney(symbol, totals.TaxAmount),
				GrandTotal:     invoice.FormatMoney(symbol, totals.GrandTotal),
			},
		},
		Layout: LayoutResponse{
			ItemCount:          view.Layout.ItemCount,
			VisibleItemCount:   view.Layout.VisibleItemCount,
			LongestDescription: view.Layout.LongestDescription,
			NotesLength:        view.Layout.NotesLength,
			TotalTextLength:    view.Layout.TotalTextLength,
		},
		SaveStatus: string(view.Status),
	}
	if !doc.Logo.IsZero() {
		resp.Logo = &LogoResponse{
			Kind:   string(doc.Logo.Kind),
			Source: doc.Logo.Source(),
			Width:  doc.LogoWidth,
		}
	}
	return resp
}

func newPartyResponse(p invoice.PartyInfo) PartyResponse {
	return PartyResponse{
		Name:     p.Name,
		Address:  p.Address,
		Contact:  p.Contact,
		Email:    p.Email,
		Services: p.ServicesLine,
	}
}
