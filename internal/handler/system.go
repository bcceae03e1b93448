package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/assadsharif/chatkit-core/internal/logic/system"
	"github.com/assadsharif/chatkit-core/internal/svc"
)

func HealthHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := system.NewHealthLogic(r.Context(), svcCtx)
		resp := l.Health()
		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		httpx.WriteJsonCtx(r.Context(), w, status, resp)
	}
}

func MetricsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := system.NewMetricsLogic(r.Context(), svcCtx)
		httpx.OkJsonCtx(r.Context(), w, l.Metrics())
	}
}

func AnonSessionHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := system.NewAnonSessionLogic(r.Context(), svcCtx)
		resp, err := l.AnonSession()
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}
