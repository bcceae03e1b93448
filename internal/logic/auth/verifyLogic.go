package auth

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/assadsharif/chatkit-core/internal/svc"
	"github.com/assadsharif/chatkit-core/internal/types"
)

type VerifyLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewVerifyLogic(ctx context.Context, svcCtx *svc.ServiceContext) *VerifyLogic {
	return &VerifyLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *VerifyLogic) Verify(req *types.VerifyRequest) (*types.VerifyResponse, error) {
	session, user, err := l.svcCtx.Auth.Verify(l.ctx, req.Token)
	if err != nil {
		return nil, err
	}
	return &types.VerifyResponse{
		SessionToken: session.Token,
		UserProfile: types.UserProfile{
			Email: user.Email,
			Tier:  string(user.Tier),
		},
	}, nil
}
