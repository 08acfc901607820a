package middleware

import (
	"net/http"
	"strings"
)

// hstsValue is two years, sent only on TLS connections
const hstsValue = "max-age=63072000; includeSubDomains"

// contentSecurityPolicy locks JSON responses down completely. Bulletin
// documents are rendered HTML with inline styles, so styles and images
// stay allowed.
var contentSecurityPolicy = strings.Join([]string{
	"default-src 'none'",
	"style-src 'self' 'unsafe-inline'",
	"img-src 'self' data:",
	"frame-ancestors 'none'",
	"base-uri 'none'",
	"form-action 'none'",
}, "; ")

// SecurityHeaders stamps the same response headers on every request
type SecurityHeaders struct {
	headers http.Header
}

// NewSecurityHeaders builds the header set. devMode drops the content
// security and permissions policies so bulletin documents can be
// previewed with browser tooling attached.
func NewSecurityHeaders(devMode bool) *SecurityHeaders {
	h := http.Header{}
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Referrer-Policy", "no-referrer")
	if !devMode {
		h.Set("Content-Security-Policy", contentSecurityPolicy)
		h.Set("Permissions-Policy", "camera=(), geolocation=(), microphone=(), payment=(), usb=()")
	}
	return &SecurityHeaders{headers: h}
}

// Handler returns the middleware handler
func (s *SecurityHeaders) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dst := w.Header()
		for k := range s.headers {
			dst.Set(k, s.headers.Get(k))
		}
		if r.TLS != nil {
			dst.Set("Strict-Transport-Security", hstsValue)
		}
		next.ServeHTTP(w, r)
	})
}
