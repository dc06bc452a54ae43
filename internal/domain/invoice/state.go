package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// State holds the canonical document being edited.
//
// State is not safe for concurrent use; the owning session serializes access.
// None of its operations fail on bad user input: non-numeric text becomes
// zero and negative quantities or prices are clamped.
type State struct {
	doc   Document
	now   func() time.Time
	newID func() uuid.UUID
}

// StateOption configures a State
type StateOption func(*State)

// WithClock sets the clock used to date new documents
func WithClock(now func() time.Time) StateOption {
	return func(s *State) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the line item id generator
func WithIDGenerator(gen func() uuid.UUID) StateOption {
	return func(s *State) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewState creates a state holding a fresh default document
func NewState(opts ...StateOption) *State {
	s := &State{
		now:   time.Now,
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

// FromSnapshot creates a state from a persisted snapshot
func FromSnapshot(snap Snapshot, opts ...StateOption) *State {
	s := NewState(opts...)
	s.Deserialize(snap)
	return s
}

// Document returns a copy of the current document
func (s *State) Document() Document {
	return s.doc.Clone()
}

// SetField sets one scalar field addressed by a dotted path such as
// "sender.name", "discountRate" or "items.<id>.quantity".
func (s *State) SetField(path, value string) error {
	return applyField(&s.doc, path, value)
}

// AddItem appends a line item and returns its id.
// Negative quantity or price is clamped to zero.
func (s *State) AddItem(description string, quantity, unitPrice decimal.Decimal) uuid.UUID {
	item := LineItem{
		ID:          s.uniqueID(),
		Description: description,
		Quantity:    clampNonNegative(quantity),
		UnitPrice:   clampNonNegative(unitPrice),
	}
	s.doc.Items = append(s.doc.Items, item)
	return item.ID
}

// AddBlankItem appends an empty row with quantity 1
func (s *State) AddBlankItem() uuid.UUID {
	item := newBlankItem(s.uniqueID())
	s.doc.Items = append(s.doc.Items, item)
	return item.ID
}

// RemoveItem removes the item with the given id.
// It reports whether an item was removed; an unknown id is a no-op.
func (s *State) RemoveItem(id string) bool {
	idx := s.doc.itemIndex(id)
	if idx < 0 {
		return false
	}
	s.doc.Items = append(s.doc.Items[:idx], s.doc.Items[idx+1:]...)
	return true
}

// RecomputeTotals derives the totals from the current items and rates
func (s *State) RecomputeTotals() Totals {
	return s.doc.Totals()
}

// SetLogo replaces the logo. Inline and referenced logos are exclusive.
func (s *State) SetLogo(logo Logo) {
	s.doc.Logo = logo
}

// Layout measures the document for the renderer's overflow check
func (s *State) Layout() LayoutMetrics {
	return measure(&s.doc)
}

// Reset replaces the document with a fresh default one
func (s *State) Reset() {
	s.doc = Document{
		InvoiceNumber:       DefaultInvoiceNumber,
		InvoiceDate:         today(s.now()),
		CurrencySymbol:      DefaultCurrencySymbol,
		ThemeColor:          DefaultThemeColor,
		LogoWidth:           DefaultLogoWidth,
		DiscountRatePercent: decimal.Zero,
		TaxRatePercent:      decimal.Zero,
	}
	s.doc.Items = []LineItem{newBlankItem(s.uniqueID())}
}

// Serialize returns the persisted form of the document. Totals are not
// stored; they are recomputed after Deserialize.
func (s *State) Serialize() Snapshot {
	d := &s.doc
	items := lo.Map(d.Items, func(item LineItem, _ int) ItemSnapshot {
		return ItemSnapshot{
			ID:          item.ID.String(),
			Description: item.Description,
			Quantity:    NewNumber(item.Quantity),
			UnitPrice:   NewNumber(item.UnitPrice),
		}
	})
	return Snapshot{
		InvoiceNumber: lo.ToPtr(d.InvoiceNumber),
		InvoiceDate:   lo.ToPtr(d.FormattedDate()),
		Currency:      lo.ToPtr(d.CurrencySymbol),
		Theme:         lo.ToPtr(d.ThemeColor),
		Sender:        snapshotParty(d.Sender),
		Client:        snapshotParty(d.Client),
		Items:         &items,
		Discount:      lo.ToPtr(NewNumber(d.DiscountRatePercent)),
		Tax:           lo.ToPtr(NewNumber(d.TaxRatePercent)),
		Notes:         lo.ToPtr(d.Notes),
		LogoWidth:     lo.ToPtr(d.LogoWidth),
		LogoBase64:    lo.ToPtr(d.Logo.Data),
		LogoURL:       lo.ToPtr(d.Logo.URL),
	}
}

// Deserialize replaces the document with the snapshot's content.
//
// Missing fields take their defaults. A missing or empty item list yields a
// single blank item. Item ids are kept when they are valid and unique,
// otherwise new ones are assigned.
func (s *State) Deserialize(snap Snapshot) {
	d := Document{
		InvoiceNumber:       lo.FromPtrOr(snap.InvoiceNumber, DefaultInvoiceNumber),
		InvoiceDate:         parseDate(lo.FromPtr(snap.InvoiceDate)),
		CurrencySymbol:      lo.FromPtrOr(snap.Currency, DefaultCurrencySymbol),
		ThemeColor:          lo.FromPtrOr(snap.Theme, DefaultThemeColor),
		Sender:              partyFromSnapshot(snap.Sender),
		Client:              partyFromSnapshot(snap.Client),
		DiscountRatePercent: numberOrZero(snap.Discount),
		TaxRatePercent:      numberOrZero(snap.Tax),
		Notes:               lo.FromPtr(snap.Notes),
		LogoWidth:           clampLogoWidth(lo.FromPtrOr(snap.LogoWidth, DefaultLogoWidth)),
		Logo:                logoFromSnapshot(snap),
	}
	s.doc = d

	if snap.Items == nil || len(*snap.Items) == 0 {
		s.doc.Items = []LineItem{newBlankItem(s.uniqueID())}
		return
	}
	s.doc.Items = make([]LineItem, 0, len(*snap.Items))
	for _, it := range *snap.Items {
		id, err := uuid.Parse(it.ID)
		if err != nil || id == uuid.Nil || s.doc.itemIndex(id.String()) >= 0 {
			id = s.uniqueID()
		}
		s.doc.Items = append(s.doc.Items, LineItem{
			ID:          id,
			Description: it.Description,
			Quantity:    clampNonNegative(it.Quantity.Decimal),
			UnitPrice:   clampNonNegative(it.UnitPrice.Decimal),
		})
	}
}

// uniqueID returns an id not used by any live item
func (s *State) uniqueID() uuid.UUID {
	for {
		id := s.newID()
		if id != uuid.Nil && s.doc.itemIndex(id.String()) < 0 {
			return id
		}
	}
}

func numberOrZero(n *Number) decimal.Decimal {
	if n == nil {
		return decimal.Zero
	}
	return n.Decimal
}
