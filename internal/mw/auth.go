package mw

import (
	"context"
	"net/http"
	"strings"
)

type bearerKey int

const tokenKey bearerKey = iota

// BearerToken extracts the raw bearer token, if any, and binds it to the
// request context; it does not itself decide whether a route requires
// authentication; routes that need a session use BearerFromContext and
// call the Auth Service's SessionCheck themselves, since "optional" vs.
// "required" auth (§6) varies per route.
func BearerToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
		ctx := context.WithValue(r.Context(), tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerFromContext returns the token bound by BearerToken, or "" if the
// request carried none.
func BearerFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}
