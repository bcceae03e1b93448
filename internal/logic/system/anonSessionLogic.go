package system

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/assadsharif/chatkit-core/internal/svc"
	"github.com/assadsharif/chatkit-core/internal/types"
)

type AnonSessionLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewAnonSessionLogic(ctx context.Context, svcCtx *svc.ServiceContext) *AnonSessionLogic {
	return &AnonSessionLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// AnonSession mints a fresh, unauthenticated session identifier pair for a
// first-time widget load (§6); neither value is persisted to the Store
// until the visitor signs up or performs an action that requires one.
func (l *AnonSessionLogic) AnonSession() (*types.AnonSessionResponse, error) {
	return &types.AnonSessionResponse{
		SessionID: l.svcCtx.IDs.NewUUID(),
		AnonID:    l.svcCtx.IDs.NewUUID(),
	}, nil
}
