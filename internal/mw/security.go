// Package mw holds the HTTP middleware chain wrapped around every route
// (§4.10): security headers, an origin-allowlist CORS layer, and a global
// panic recovery boundary. Grounded on the teacher's rest.Server middleware
// usage (growthapi.go's rest.WithCors) generalized from a single wildcard
// origin to the spec's strict allowlist-echo requirement.
package mw

import "net/http"

// SecurityHeaders stamps the fixed header set §4.10 requires on every
// response, success or error alike.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'self'")
		h.Set("X-XSS-Protection", "1; mode=block")
		next.ServeHTTP(w, r)
	})
}
