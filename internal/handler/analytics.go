package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	analyticslogic "github.com/assadsharif/chatkit-core/internal/logic/analytics"
	"github.com/assadsharif/chatkit-core/internal/svc"
	"github.com/assadsharif/chatkit-core/internal/types"
)

func AnalyticsEventHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.AnalyticsEventRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := analyticslogic.NewEventLogic(r.Context(), svcCtx)
		resp, err := l.Event(&req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}
