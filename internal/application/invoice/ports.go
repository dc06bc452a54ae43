package invoice

import (
	"context"
	"strings"
)

// Renderer receives every recomputed view of a session's document.
// Rendering failures are logged by the session and never abort an edit.
type Renderer interface {
	Render(ctx context.Context, view View) error
}

// Format is an export output format
type Format string

const (
	FormatPDF Format = "pdf"
	FormatJPG Format = "jpg"
	FormatCSV Format = "csv"
)

// ParseFormat parses an export format name, accepting "jpeg" for jpg
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return FormatPDF, true
	case "jpg", "jpeg":
		return FormatJPG, true
	case "csv":
		return FormatCSV, true
	}
	return "", false
}

// Extension returns the file extension for the format
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatJPG:
		return "image/jpeg"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	}
	return "application/octet-stream"
}

// Artifact is the output of one export
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
	// Overflow is true when the rendered page content exceeds one page
	Overflow bool
}

// Exporter produces a downloadable artifact from a view
type Exporter interface {
	Export(ctx context.Context, view View, format Format) (*Artifact, error)
}

// NopRenderer discards views
type NopRenderer struct{}

// Render implements Renderer
func (NopRenderer) Render(context.Context, View) error { return nil }
