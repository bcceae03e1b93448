package system

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/assadsharif/chatkit-core/internal/svc"
	"github.com/assadsharif/chatkit-core/internal/types"
)

type HealthLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewHealthLogic(ctx context.Context, svcCtx *svc.ServiceContext) *HealthLogic {
	return &HealthLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *HealthLogic) Health() *types.HealthResponse {
	status, database := "ok", "connected"
	if err := l.svcCtx.RawDB.Ping(l.ctx); err != nil {
		status, database = "degraded", "disconnected"
		l.Errorw("health check: database unreachable", logx.Field("error", err.Error()))
	}
	return &types.HealthResponse{
		Status:        status,
		Database:      database,
		UptimeSeconds: time.Since(l.svcCtx.StartedAt).Seconds(),
	}
}
