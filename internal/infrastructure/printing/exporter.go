package printing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	app "github.com/invoicer/backend/internal/application/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
)

// Exporter routes each format to the backend that produces it.
// Any failure is returned wrapped in shared.ErrExportFailed.
type Exporter struct {
	backends map[app.Format]app.Exporter
	logger   *zap.Logger
}

// NewExporter creates an exporter. browser serves PDF and JPG and may be nil
// when no Chrome is available; those formats then fail.
func NewExporter(browser app.Exporter, spreadsheet app.Exporter, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	backends := make(map[app.Format]app.Exporter, 3)
	if browser != nil {
		backends[app.FormatPDF] = browser
		backends[app.FormatJPG] = browser
	}
	if spreadsheet != nil {
		backends[app.FormatCSV] = spreadsheet
	}
	return &Exporter{backends: backends, logger: logger}
}

// Supports reports whether a backend is configured for the format
func (e *Exporter) Supports(format app.Format) bool {
	_, ok := e.backends[format]
	return ok
}

// Export implements invoice.Exporter
func (e *Exporter) Export(ctx context.Context, view app.View, format app.Format) (*app.Artifact, error) {
	backend, ok := e.backends[format]
	if !ok {
		return nil, fmt.Errorf("%w: %w", shared.ErrExportFailed,
			NewRenderError(ErrCodeUnsupportedFormat, "no exporter for format "+string(format), nil))
	}

	artifact, err := backend.Export(ctx, view, format)
	if err != nil {
		e.logger.Warn("export failed",
			zap.String("owner_id", view.OwnerID),
			zap.String("format", string(format)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", shared.ErrExportFailed, err)
	}
	return artifact, nil
}

var _ app.Exporter = (*Exporter)(nil)
