package auth

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/assadsharif/chatkit-core/internal/mw"
	"github.com/assadsharif/chatkit-core/internal/svc"
	"github.com/assadsharif/chatkit-core/internal/types"
)

type RefreshTokenLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRefreshTokenLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RefreshTokenLogic {
	return &RefreshTokenLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *RefreshTokenLogic) RefreshToken() (*types.RefreshResponse, error) {
	bearer := mw.BearerFromContext(l.ctx)
	newToken, err := l.svcCtx.Auth.Refresh(l.ctx, bearer)
	if err != nil {
		return nil, err
	}
	return &types.RefreshResponse{Token: newToken}, nil
}
