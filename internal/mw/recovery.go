package mw

import (
	"encoding/json"
	"net/http"

	"github.com/assadsharif/chatkit-core/internal/obslog"
	"github.com/assadsharif/chatkit-core/internal/reqctx"
)

// recoveryEnvelope is the fixed 500 body §4.10 mandates for any uncaught
// panic; it never carries the panic value or a stack trace.
type recoveryEnvelope struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// Recovery is the global boundary: any panic below it is logged with full
// context and request id, then converted into a redacted 500 so a bug in
// one handler never takes down the listener or leaks internals.
func Recovery(logger *obslog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					requestID, _ := reqctx.RequestIDFromContext(r.Context())
					logger.Error(r.Context(), "unhandled_exception", map[string]any{
						"panic": rec,
						"path":  r.URL.Path,
					})
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(recoveryEnvelope{
						Error:     "internal_error",
						Message:   "An unexpected error occurred. Please try again later.",
						RequestID: requestID,
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
