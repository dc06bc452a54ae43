package printing

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// InvoiceTemplatePath is the embedded path of the invoice page template
const InvoiceTemplatePath = "templates/invoice.html"

// LoadTemplateContent reads a template file from the embedded filesystem
func LoadTemplateContent(filePath string) (string, error) {
	content, err := templateFS.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read template file %s: %w", filePath, err)
	}
	return string(content), nil
}

// parseInvoiceTemplate parses the embedded invoice template
func parseInvoiceTemplate() (*template.Template, error) {
	content, err := LoadTemplateContent(InvoiceTemplatePath)
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidTemplate, "invoice template missing", err)
	}
	tmpl, err := template.New("invoice").Parse(content)
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidTemplate, "failed to parse invoice template", err)
	}
	return tmpl, nil
}
