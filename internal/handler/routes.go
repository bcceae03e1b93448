// Code in the teacher's goctl-scaffolded style: one RegisterHandlers per
// service, listing every route as a rest.Route literal. Unlike the
// teacher's wildcard rest.WithCors("*"), this server composes its own
// middleware chain per route so the allowlist-echo CORS, security headers,
// recovery boundary, and bearer extraction (§4.10) wrap every handler
// uniformly.
package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"github.com/assadsharif/chatkit-core/internal/mw"
	"github.com/assadsharif/chatkit-core/internal/reqctx"
	"github.com/assadsharif/chatkit-core/internal/svc"
)

// chain wraps h with the fixed middleware stack every route shares, outermost
// first: recovery must see panics from everything below it, security headers
// and CORS must land on every response including an error response, and the
// request id must be bound before any handler or nested middleware runs.
func chain(svcCtx *svc.ServiceContext, h http.HandlerFunc) http.HandlerFunc {
	wrapped := http.Handler(h)
	wrapped = mw.BearerToken(wrapped)
	wrapped = mw.CORS(svcCtx.Config.CORSOrigins)(wrapped)
	wrapped = mw.SecurityHeaders(wrapped)
	wrapped = mw.Metrics(svcCtx.Metrics)(wrapped)
	wrapped = reqctx.Middleware(svcCtx.IDs)(wrapped)
	wrapped = mw.Recovery(svcCtx.Logger)(wrapped)
	return wrapped.ServeHTTP
}

// RegisterHandlers wires every route named in §6's HTTP API table onto
// server.
func RegisterHandlers(server *rest.Server, svcCtx *svc.ServiceContext) {
	server.AddRoutes([]rest.Route{
		{
			Method:  http.MethodGet,
			Path:    "/health",
			Handler: chain(svcCtx, HealthHandler(svcCtx)),
		},
		{
			Method:  http.MethodGet,
			Path:    "/metrics",
			Handler: chain(svcCtx, MetricsHandler(svcCtx)),
		},
		{
			Method:  http.MethodPost,
			Path:    "/api/v1/anon-session",
			Handler: chain(svcCtx, AnonSessionHandler(svcCtx)),
		},
		{
			Method:  http.MethodPost,
			Path:    "/api/v1/auth/signup",
			Handler: chain(svcCtx, SignupHandler(svcCtx)),
		},
		{
			Method:  http.MethodPost,
			Path:    "/api/v1/auth/verify",
			Handler: chain(svcCtx, VerifyHandler(svcCtx)),
		},
		{
			Method:  http.MethodGet,
			Path:    "/api/v1/auth/session-check",
			Handler: chain(svcCtx, SessionCheckHandler(svcCtx)),
		},
		{
			Method:  http.MethodPost,
			Path:    "/api/v1/auth/refresh-token",
			Handler: chain(svcCtx, RefreshTokenHandler(svcCtx)),
		},
		{
			Method:  http.MethodPost,
			Path:    "/api/v1/auth/logout",
			Handler: chain(svcCtx, LogoutHandler(svcCtx)),
		},
		{
			Method:  http.MethodPost,
			Path:    "/api/v1/chat",
			Handler: chain(svcCtx, ChatHandler(svcCtx)),
		},
		{
			Method:  http.MethodPost,
			Path:    "/api/v1/chat/save",
			Handler: chain(svcCtx, SaveHandler(svcCtx)),
		},
		{
			Method:  http.MethodPost,
			Path:    "/api/v1/user/personalize",
			Handler: chain(svcCtx, PersonalizeHandler(svcCtx)),
		},
		{
			Method:  http.MethodPost,
			Path:    "/api/v1/analytics/event",
			Handler: chain(svcCtx, AnalyticsEventHandler(svcCtx)),
		},
	})
}
