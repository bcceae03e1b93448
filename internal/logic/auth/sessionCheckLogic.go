package auth

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/assadsharif/chatkit-core/internal/mw"
	"github.com/assadsharif/chatkit-core/internal/svc"
	"github.com/assadsharif/chatkit-core/internal/types"
)

type SessionCheckLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSessionCheckLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SessionCheckLogic {
	return &SessionCheckLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *SessionCheckLogic) SessionCheck() (*types.SessionCheckResponse, error) {
	bearer := mw.BearerFromContext(l.ctx)
	valid, user := l.svcCtx.Auth.SessionCheck(l.ctx, bearer)
	if !valid {
		return &types.SessionCheckResponse{Valid: false}, nil
	}
	return &types.SessionCheckResponse{
		Valid: true,
		User:  &types.UserProfile{Email: user.Email, Tier: string(user.Tier)},
	}, nil
}
