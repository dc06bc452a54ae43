package printing

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	app "github.com/invoicer/backend/internal/application/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
)

type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) Export(ctx context.Context, view app.View, format app.Format) (*app.Artifact, error) {
	args := m.Called(ctx, view, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*app.Artifact), args.Error(1)
}

func TestExporter_Export(t *testing.T) {
	ctx := context.Background()
	view := sampleView()

	t.Run("routes pdf and jpg to the browser", func(t *testing.T) {
		browser := new(MockExporter)
		browser.On("Export", ctx, view, app.FormatPDF).Return(&app.Artifact{Filename: "Invoice_INV-042.pdf"}, nil)
		browser.On("Export", ctx, view, app.FormatJPG).Return(&app.Artifact{Filename: "Invoice_INV-042.jpg"}, nil)
		e := NewExporter(browser, NewSpreadsheetExporter(), nil)

		pdf, err := e.Export(ctx, view, app.FormatPDF)
		require.NoError(t, err)
		jpg, err := e.Export(ctx, view, app.FormatJPG)
		require.NoError(t, err)

		assert.Equal(t, "Invoice_INV-042.pdf", pdf.Filename)
		assert.Equal(t, "Invoice_INV-042.jpg", jpg.Filename)
		browser.AssertExpectations(t)
	})

	t.Run("csv does not need a browser", func(t *testing.T) {
		e := NewExporter(nil, NewSpreadsheetExporter(), nil)

		artifact, err := e.Export(ctx, view, app.FormatCSV)
		require.NoError(t, err)

		assert.Equal(t, "Invoice_INV-042.csv", artifact.Filename)
		assert.False(t, e.Supports(app.FormatPDF))
	})

	t.Run("missing backend is an export failure", func(t *testing.T) {
		e := NewExporter(nil, NewSpreadsheetExporter(), nil)

		_, err := e.Export(ctx, view, app.FormatPDF)

		assert.True(t, errors.Is(err, shared.ErrExportFailed))
		var renderErr *RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, ErrCodeUnsupportedFormat, renderErr.Code)
	})

	t.Run("backend failure is wrapped", func(t *testing.T) {
		browser := new(MockExporter)
		cause := NewRenderError(ErrCodeRenderTimeout, "export timed out", context.DeadlineExceeded)
		browser.On("Export", ctx, view, app.FormatPDF).Return(nil, cause)
		e := NewExporter(browser, nil, nil)

		_, err := e.Export(ctx, view, app.FormatPDF)

		assert.True(t, errors.Is(err, shared.ErrExportFailed))
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}

func TestSpreadsheetExporter_Export(t *testing.T) {
	e := NewSpreadsheetExporter()

	t.Run("writes details, visible rows and totals", func(t *testing.T) {
		artifact, err := e.Export(context.Background(), sampleView(), app.FormatCSV)
		require.NoError(t, err)
		assert.Equal(t, "text/csv; charset=utf-8", artifact.ContentType)

		r := csv.NewReader(bytes.NewReader(artifact.Data))
		r.FieldsPerRecord = -1
		records, err := r.ReadAll()
		require.NoError(t, err)

		assert.Contains(t, records, []string{"Invoice Number", "#INV-042"})
		assert.Contains(t, records, []string{"Invoice Date", "2024-03-09"})
		assert.Contains(t, records, []string{"From Name", "Acme Studio"})
		assert.Contains(t, records, []string{"Design", "2", "9.44", "18.88"})
		assert.Contains(t, records, []string{"Hosting", "1", "10.00", "10.00"})
		assert.Contains(t, records, []string{"Subtotal", "", "", "28.88"})
		assert.Contains(t, records, []string{"Discount (10%)", "", "", "-2.89"})
		assert.Contains(t, records, []string{"Tax (5%)", "", "", "1.30"})
		assert.Contains(t, records, []string{"Total", "", "", "27.29"})
		assert.Contains(t, records, []string{"Notes", "Thanks <3"})
		assert.NotContains(t, records, []string{"From Address", ""})
		assert.NotContains(t, records, []string{"", "1", "0.00", "0.00"})
	})

	t.Run("quotes text that would run as a formula", func(t *testing.T) {
		view := sampleView()
		view.Document.Items[0].Description = "=HYPERLINK(\"http://x.test\")"
		view.Document.Sender.Name = "@SUM(A1)"
		view.Document.Client.Email = "+1 555"
		view.Document.Notes = "-2+3"
		view.Document.InvoiceNumber = "\tINV"

		artifact, err := e.Export(context.Background(), view, app.FormatCSV)
		require.NoError(t, err)
		r := csv.NewReader(bytes.NewReader(artifact.Data))
		r.FieldsPerRecord = -1
		records, err := r.ReadAll()
		require.NoError(t, err)

		assert.Contains(t, records, []string{"'=HYPERLINK(\"http://x.test\")", "2", "9.44", "18.88"})
		assert.Contains(t, records, []string{"From Name", "'@SUM(A1)"})
		assert.Contains(t, records, []string{"Bill To Email", "'+1 555"})
		assert.Contains(t, records, []string{"Notes", "'-2+3"})
		assert.Contains(t, records, []string{"Invoice Number", "'\tINV"})
		assert.Contains(t, records, []string{"Discount (10%)", "", "", "-2.89"})
	})

	t.Run("rejects other formats", func(t *testing.T) {
		_, err := e.Export(context.Background(), sampleView(), app.FormatPDF)
		var renderErr *RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, ErrCodeUnsupportedFormat, renderErr.Code)
	})
}

func TestPreviewRenderer(t *testing.T) {
	r := NewPreviewRenderer(NewTemplateEngine(), time.Minute, nil)
	view := sampleView()

	_, ok := r.Page(view.OwnerID)
	assert.False(t, ok)

	require.NoError(t, r.Render(context.Background(), view))
	page, ok := r.Page(view.OwnerID)
	require.True(t, ok)
	assert.Contains(t, page, "#INV-042")
	assert.Contains(t, page, "<script>")

	view.Document.InvoiceNumber = "#INV-043"
	require.NoError(t, r.Render(context.Background(), view))
	page, _ = r.Page(view.OwnerID)
	assert.Contains(t, page, "#INV-043")

	r.Forget(view.OwnerID)
	_, ok = r.Page(view.OwnerID)
	assert.False(t, ok)
}

func TestChromedpExporter(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		r, err := NewChromedpExporter(NewTemplateEngine(), nil)
		require.NoError(t, err)
		defer r.Close()

		assert.Equal(t, defaultChromeTimeout, r.config.DefaultTimeout)
		assert.Equal(t, defaultDeviceScale, r.config.DeviceScale)
		assert.Equal(t, defaultJPEGQuality, r.config.JPEGQuality)
		assert.Equal(t, defaultMaxConcurrent, r.config.MaxConcurrent)
	})

	t.Run("requires an engine", func(t *testing.T) {
		_, err := NewChromedpExporter(nil, nil)
		assert.Error(t, err)
	})

	t.Run("rejects csv before starting a browser", func(t *testing.T) {
		r, err := NewChromedpExporter(NewTemplateEngine(), &ChromedpConfig{})
		require.NoError(t, err)
		defer r.Close()

		_, err = r.Export(context.Background(), sampleView(), app.FormatCSV)
		var renderErr *RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, ErrCodeUnsupportedFormat, renderErr.Code)
	})
}

func TestPdfParams(t *testing.T) {
	a4 := pdfParams(PaperSizeA4)
	assert.InDelta(t, 8.27, a4.paperWidth, 0.01)
	assert.InDelta(t, 11.69, a4.paperHeight, 0.01)
	assert.Equal(t, 1.0, a4.scale)

	letter := pdfParams(PaperSizeLetter)
	assert.InDelta(t, 8.5, letter.paperWidth, 0.001)
	assert.InDelta(t, 11.0, letter.paperHeight, 0.001)
}

func TestEncodeJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for x := 0; x < 8; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	out, err := encodeJPEG(buf.Bytes(), 98)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), decoded.Bounds())

	_, err = encodeJPEG([]byte("not an image"), 98)
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeEncodeFailed, renderErr.Code)
}

func TestPaperSize(t *testing.T) {
	p, ok := ParsePaperSize(" letter ")
	assert.True(t, ok)
	assert.Equal(t, PaperSizeLetter, p)

	_, ok = ParsePaperSize("A5")
	assert.False(t, ok)
}
