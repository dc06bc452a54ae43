package invoice

// PartyInfo describes the sender or the client of an invoice.
// Every field is optional; an empty string means "intentionally blank".
type PartyInfo struct {
	Name         string
	Address      string
	Contact      string
	Email        string
	ServicesLine string
}

// IsEmpty returns true if no field is filled in
func (p PartyInfo) IsEmpty() bool {
	return p == PartyInfo{}
}

func (p PartyInfo) textLength() int {
	return len(p.Name) + len(p.Address) + len(p.Contact) + len(p.Email) + len(p.ServicesLine)
}
