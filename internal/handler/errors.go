package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/assadsharif/chatkit-core/internal/analytics"
	"github.com/assadsharif/chatkit-core/internal/auth"
	"github.com/assadsharif/chatkit-core/internal/chatsvc"
	"github.com/assadsharif/chatkit-core/internal/reqctx"
	"github.com/assadsharif/chatkit-core/internal/types"
)

// writeError translates a service-layer typed error into the HTTP envelope
// and status code §7's taxonomy table specifies. It is the only place that
// maps errors to wire shapes; every logic struct returns the typed sentinel
// values and never writes to the response itself.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID, _ := reqctx.RequestIDFromContext(r.Context())
	status, code := classify(err)
	httpx.WriteJsonCtx(r.Context(), w, status, types.ErrorEnvelope{
		Error:     code,
		RequestID: requestID,
	})
}

func classify(err error) (status int, code string) {
	switch err {
	case auth.ErrConsentRequired:
		return http.StatusBadRequest, "CONSENT_REQUIRED"
	case auth.ErrInvalidEmail:
		return http.StatusBadRequest, "INVALID_REQUEST"
	case auth.ErrVerificationFailed:
		return http.StatusUnauthorized, "VERIFICATION_FAILED"
	case auth.ErrTokenExpired:
		return http.StatusGone, "TOKEN_EXPIRED"
	case auth.ErrSessionExpired:
		return http.StatusGone, "SESSION_EXPIRED"
	case auth.ErrUnavailable:
		return http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"

	case chatsvc.ErrInvalidRequest:
		return http.StatusUnprocessableEntity, "INVALID_REQUEST"
	case chatsvc.ErrMessageTooLong:
		return http.StatusUnprocessableEntity, "MESSAGE_TOO_LONG"
	case chatsvc.ErrInvalidSessionID:
		return http.StatusUnprocessableEntity, "INVALID_SESSION_ID"
	case chatsvc.ErrUnauthorized:
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case chatsvc.ErrServiceUnavailable:
		return http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"
	case chatsvc.ErrRequestTimeout:
		return http.StatusGatewayTimeout, "REQUEST_TIMEOUT"

	case analytics.ErrInvalidEventType, analytics.ErrPayloadTooLarge:
		return http.StatusUnprocessableEntity, "INVALID_REQUEST"
	case analytics.ErrUnavailable:
		return http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"

	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeUnauthorized answers a missing/invalid bearer on a required-auth
// route; it has no corresponding service-layer error since the check never
// reaches a service.
func writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	requestID, _ := reqctx.RequestIDFromContext(r.Context())
	httpx.WriteJsonCtx(r.Context(), w, http.StatusUnauthorized, types.ErrorEnvelope{
		Error:     "UNAUTHORIZED",
		RequestID: requestID,
	})
}

// writeRateLimited answers a 429 with the spec's nested `detail` envelope
// shape, which differs from every other error response (§6).
func writeRateLimited(w http.ResponseWriter, r *http.Request, retryAfterSeconds int) {
	httpx.WriteJsonCtx(r.Context(), w, http.StatusTooManyRequests, types.RateLimitEnvelope{
		Detail: types.ErrorEnvelope{
			Error:      "rate_limited",
			RetryAfter: retryAfterSeconds,
		},
	})
}
