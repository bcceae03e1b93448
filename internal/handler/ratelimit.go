package handler

import (
	"math"
	"net/http"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/assadsharif/chatkit-core/internal/chatsvc"
	"github.com/assadsharif/chatkit-core/internal/svc"
)

// checkRateLimit enforces the shared Limiter (§4.6) for subject performing
// action, writing the response itself and returning false when the caller
// must not proceed. subject is the bearer token of an authenticated
// session, or the caller's anonymous session id for anonymous-allowed
// actions (§3, §4.6) — never the remote address: a fresh TCP connection
// typically gets a new ephemeral port, so RemoteAddr changes from one
// request to the next for the very same visitor and also pools unrelated
// visitors behind the same NAT/proxy IP together. Callers must resolve
// subject themselves, which for anonymous-allowed routes means parsing the
// request body before calling this.
func checkRateLimit(w http.ResponseWriter, r *http.Request, svcCtx *svc.ServiceContext, action, subject string) bool {
	decision, err := svcCtx.Limiter.Check(r.Context(), subject, action)
	if err != nil {
		logx.WithContext(r.Context()).Errorw("rate limit check failed", logx.Field("error", err.Error()))
		writeError(w, r, chatsvc.ErrServiceUnavailable)
		return false
	}
	if !decision.Allowed {
		svcCtx.Metrics.RecordRateLimited()
		writeRateLimited(w, r, int(math.Ceil(decision.RetryAfter.Seconds())))
		return false
	}
	return true
}
