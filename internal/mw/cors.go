package mw

import (
	"net/http"
)

// CORS echoes the Origin header only when it is present in allowlist; every
// other origin gets no CORS headers at all, which browsers treat as a
// same-origin-only response — never the teacher's rest.WithCors("*")
// wildcard, since this spec requires an allowlist-echo rather than a
// wildcard (§4.10).
func CORS(allowlist []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowlist))
	for _, origin := range allowlist {
		allowed[origin] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && allowed[origin] {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Vary", "Origin")
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
