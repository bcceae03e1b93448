package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	chatlogic "github.com/assadsharif/chatkit-core/internal/logic/chat"
	"github.com/assadsharif/chatkit-core/internal/mw"
	"github.com/assadsharif/chatkit-core/internal/svc"
	"github.com/assadsharif/chatkit-core/internal/types"
)

// ChatHandler parses the body before checking the rate limit because the
// subject for an unauthenticated caller is the anonymous session id carried
// in context.session_id (§3, §4.6), not the bearer token it doesn't have —
// that id only exists once the body has been decoded.
func ChatHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ChatRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		subject := mw.BearerFromContext(r.Context())
		if subject == "" {
			subject = req.Context.SessionID
		}
		if !checkRateLimit(w, r, svcCtx, "chat", subject) {
			return
		}

		l := chatlogic.NewChatLogic(r.Context(), svcCtx)
		resp, err := l.Chat(&req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

func SaveHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bearer := mw.BearerFromContext(r.Context())
		if bearer == "" {
			writeUnauthorized(w, r)
			return
		}

		var req types.SaveRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		if !checkRateLimit(w, r, svcCtx, "save", bearer) {
			return
		}

		l := chatlogic.NewSaveLogic(r.Context(), svcCtx)
		resp, err := l.Save(&req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

func PersonalizeHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bearer := mw.BearerFromContext(r.Context())
		if bearer == "" {
			writeUnauthorized(w, r)
			return
		}

		var req types.PersonalizeRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		if !checkRateLimit(w, r, svcCtx, "personalize", bearer) {
			return
		}

		l := chatlogic.NewPersonalizeLogic(r.Context(), svcCtx)
		resp, err := l.Personalize(&req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}
