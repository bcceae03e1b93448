package system

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/assadsharif/chatkit-core/internal/svc"
	"github.com/assadsharif/chatkit-core/internal/types"
)

type MetricsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewMetricsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *MetricsLogic {
	return &MetricsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *MetricsLogic) Metrics() *types.MetricsResponse {
	snap := l.svcCtx.Metrics.Snapshot()
	return &types.MetricsResponse{
		TotalRequests:      snap.TotalRequests,
		ErrorCount:         snap.ErrorCount,
		RateLimitedCount:   snap.RateLimitedCount,
		MeanResponseMillis: snap.MeanResponseMillis,
		UptimeSeconds:      snap.UptimeSeconds,
	}
}
