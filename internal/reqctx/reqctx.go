// Package reqctx implements the request-context middleware (§4.4): every
// inbound request gets a correlation id, adopted from X-Request-ID when the
// client supplies a well-formed one, else freshly minted, bound to the
// request's context and echoed back on the response.
package reqctx

import (
	"context"
	"net/http"
	"regexp"

	"github.com/assadsharif/chatkit-core/internal/clock"
)

type contextKey int

const requestIDKey contextKey = iota

// HeaderName is the header the client may supply and the server always
// echoes.
const HeaderName = "X-Request-ID"

// maxRequestIDLen bounds a client-supplied request id; longer values are
// replaced rather than trusted verbatim.
const maxRequestIDLen = 128

var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// WithRequestID binds id to ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the bound request id, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}

// Middleware adopts or mints a request id, binds it to the request context,
// and echoes it on the response header before any handler body runs.
func Middleware(ids clock.IDSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderName)
			if !validRequestID.MatchString(id) || len(id) > maxRequestIDLen {
				id = ids.NewUUID()
			}
			w.Header().Set(HeaderName, id)
			ctx := WithRequestID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
