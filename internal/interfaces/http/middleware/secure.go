package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityConfig holds the security headers settings
type SecurityConfig struct {
	// HSTS only takes effect over HTTPS
	HSTSEnabled           bool
	HSTSMaxAge            int // seconds
	HSTSIncludeSubdomains bool

	// FrameAncestors may embed responses in a frame. The front-end shows the
	// invoice preview page in an iframe, so it has to be listed here when it
	// is served from another origin. Empty allows same-origin framing only.
	FrameAncestors []string

	// PermissionsPolicy is sent as Permissions-Policy when set
	PermissionsPolicy string

	// SkipCSPPathPrefixes get no Content-Security-Policy. Swagger UI relies
	// on inline scripts.
	SkipCSPPathPrefixes []string
}

// DefaultSecurityConfig returns the default security headers settings
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		PermissionsPolicy:     "camera=(), geolocation=(), microphone=(), payment=(), usb=()",
		SkipCSPPathPrefixes:   []string{"/swagger"},
	}
}

// Secure adds security headers using the default configuration
func Secure() gin.HandlerFunc {
	return SecureWithConfig(DefaultSecurityConfig())
}

// SecureWithConfig adds security headers to every response.
//
// The CSP matches what the preview page needs: inline styles for the theme
// color, logos from data URLs or https object storage, and no scripts.
func SecureWithConfig(cfg SecurityConfig) gin.HandlerFunc {
	ancestors := "'self'"
	frameOptions := "SAMEORIGIN"
	if len(cfg.FrameAncestors) > 0 {
		ancestors += " " + strings.Join(cfg.FrameAncestors, " ")
		// X-Frame-Options cannot name other origins; CSP frame-ancestors wins
		// in every browser that understands it
		frameOptions = ""
	}
	csp := "default-src 'none'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self' data:; " +
		"connect-src 'self'; base-uri 'none'; form-action 'none'; frame-ancestors " + ancestors

	var hsts string
	if cfg.HSTSEnabled {
		hsts = fmt.Sprintf("max-age=%d", cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if frameOptions != "" {
			h.Set("X-Frame-Options", frameOptions)
		}
		if !hasAnyPrefix(c.Request.URL.Path, cfg.SkipCSPPathPrefixes) {
			h.Set("Content-Security-Policy", csp)
		}
		if hsts != "" {
			h.Set("Strict-Transport-Security", hsts)
		}
		if cfg.PermissionsPolicy != "" {
			h.Set("Permissions-Policy", cfg.PermissionsPolicy)
		}
		c.Next()
	}
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
