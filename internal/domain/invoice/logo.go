package invoice

// LogoKind tells how the logo bytes are kept
type LogoKind string

const (
	LogoNone       LogoKind = ""
	LogoInline     LogoKind = "INLINE"     // data URL embedded in the document
	LogoReferenced LogoKind = "REFERENCED" // URL of a stored object
)

// Logo is either an inline data URL or a reference URL, never both
type Logo struct {
	Kind LogoKind
	Data string
	URL  string
}

// InlineLogo creates a logo embedded as a data URL
func InlineLogo(dataURL string) Logo {
	if dataURL == "" {
		return Logo{}
	}
	return Logo{Kind: LogoInline, Data: dataURL}
}

// ReferencedLogo creates a logo stored out of line
func ReferencedLogo(url string) Logo {
	if url == "" {
		return Logo{}
	}
	return Logo{Kind: LogoReferenced, URL: url}
}

// IsZero returns true if no logo is set
func (l Logo) IsZero() bool {
	return l.Kind == LogoNone
}

// Source returns the value usable as an image src attribute
func (l Logo) Source() string {
	switch l.Kind {
	case LogoInline:
		return l.Data
	case LogoReferenced:
		return l.URL
	}
	return ""
}
