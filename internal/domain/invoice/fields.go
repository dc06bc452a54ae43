package invoice

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/invoicer/backend/internal/domain/shared"
)

// ErrUnknownField is returned by SetField for a path that names no field.
// It indicates a caller bug, never bad user input.
var ErrUnknownField = shared.NewDomainError("UNKNOWN_FIELD", "Unknown invoice field")

type fieldSetter func(d *Document, value string)

type partySetter func(p *PartyInfo, value string)

type itemSetter func(item *LineItem, value string)

var documentFields = map[string]fieldSetter{
	"invoiceNumber":  func(d *Document, v string) { d.InvoiceNumber = v },
	"invoiceDate":    func(d *Document, v string) { d.InvoiceDate = parseDate(v) },
	"currencySymbol": func(d *Document, v string) { d.CurrencySymbol = v },
	"notes":          func(d *Document, v string) { d.Notes = v },
	"themeColor":     func(d *Document, v string) { d.ThemeColor = v },
	"logoWidth":      func(d *Document, v string) { d.LogoWidth = clampLogoWidth(int(parseNonNegative(v).IntPart())) },
	"discountRate":   func(d *Document, v string) { d.DiscountRatePercent = ParseAmount(v) },
	"taxRate":        func(d *Document, v string) { d.TaxRatePercent = ParseAmount(v) },
}

var partyFields = map[string]partySetter{
	"name":     func(p *PartyInfo, v string) { p.Name = v },
	"address":  func(p *PartyInfo, v string) { p.Address = v },
	"contact":  func(p *PartyInfo, v string) { p.Contact = v },
	"email":    func(p *PartyInfo, v string) { p.Email = v },
	"services": func(p *PartyInfo, v string) { p.ServicesLine = v },
}

var itemFields = map[string]itemSetter{
	"description": func(i *LineItem, v string) { i.Description = v },
	"quantity":    func(i *LineItem, v string) { i.Quantity = parseNonNegative(v) },
	"unitPrice":   func(i *LineItem, v string) { i.UnitPrice = parseNonNegative(v) },
}

// FieldPaths lists the settable scalar paths, sorted.
// Item paths are reported with a literal "<id>" segment.
func FieldPaths() []string {
	paths := lo.Keys(documentFields)
	for _, party := range []string{"sender", "client"} {
		for _, name := range lo.Keys(partyFields) {
			paths = append(paths, party+"."+name)
		}
	}
	for _, name := range lo.Keys(itemFields) {
		paths = append(paths, "items.<id>."+name)
	}
	slices.Sort(paths)
	return paths
}

// applyField resolves a dotted path and applies value to the document.
// An edit addressed to an item that no longer exists is dropped silently.
func applyField(d *Document, path, value string) error {
	if set, ok := documentFields[path]; ok {
		set(d, value)
		return nil
	}

	head, rest, found := strings.Cut(path, ".")
	if !found {
		return unknownField(path)
	}

	switch head {
	case "sender", "client":
		set, ok := partyFields[rest]
		if !ok {
			return unknownField(path)
		}
		if head == "sender" {
			set(&d.Sender, value)
		} else {
			set(&d.Client, value)
		}
		return nil
	case "items":
		id, name, found := strings.Cut(rest, ".")
		if !found {
			return unknownField(path)
		}
		set, ok := itemFields[name]
		if !ok {
			return unknownField(path)
		}
		if idx := d.itemIndex(id); idx >= 0 {
			set(&d.Items[idx], value)
		}
		return nil
	}
	return unknownField(path)
}

func unknownField(path string) error {
	return fmt.Errorf("%w: %q", ErrUnknownField, path)
}
