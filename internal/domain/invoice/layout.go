package invoice

// LayoutMetrics summarizes the document size for the renderer's page
// overflow check. The core does not decide whether the page overflows.
type LayoutMetrics struct {
	ItemCount          int
	VisibleItemCount   int
	LongestDescription int
	NotesLength        int
	PartyTextLength    int
	TotalTextLength    int
}

func measure(d *Document) LayoutMetrics {
	m := LayoutMetrics{
		ItemCount:       len(d.Items),
		NotesLength:     len(d.Notes),
		PartyTextLength: d.Sender.textLength() + d.Client.textLength(),
	}
	descriptions := 0
	for _, item := range d.Items {
		if item.IsVisible() {
			m.VisibleItemCount++
		}
		if n := len(item.Description); n > m.LongestDescription {
			m.LongestDescription = n
		}
		descriptions += len(item.Description)
	}
	m.TotalTextLength = descriptions + m.NotesLength + m.PartyTextLength
	return m
}
