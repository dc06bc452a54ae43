// Package printing turns invoice views into HTML previews and downloadable
// artifacts.
//
// This package contains:
// - TemplateEngine rendering the invoice HTML page from an application View
// - PreviewRenderer keeping the latest preview page per owner
// - ChromedpExporter printing the page to PDF or capturing it as JPEG with
// headless Chrome, and measuring page overflow
// - SpreadsheetExporter writing the line items and totals as CSV
// - Exporter dispatching an export request to the right backend
//
// Example usage:
//
//	engine := NewTemplateEngine()
//	chrome, err := NewChromedpExporter(engine, &ChromedpConfig{NoSandbox: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer chrome.Close()
//
//	exporter := NewExporter(chrome, NewSpreadsheetExporter(), logger)
//	artifact, err := exporter.Export(ctx, session.View(), invoice.FormatPDF)
package printing
