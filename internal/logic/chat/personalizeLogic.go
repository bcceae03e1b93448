package chat

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/assadsharif/chatkit-core/internal/chatsvc"
	"github.com/assadsharif/chatkit-core/internal/collab"
	"github.com/assadsharif/chatkit-core/internal/mw"
	"github.com/assadsharif/chatkit-core/internal/svc"
	"github.com/assadsharif/chatkit-core/internal/types"
)

type PersonalizeLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewPersonalizeLogic(ctx context.Context, svcCtx *svc.ServiceContext) *PersonalizeLogic {
	return &PersonalizeLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *PersonalizeLogic) Personalize(req *types.PersonalizeRequest) (*types.PersonalizeResponse, error) {
	bearer := mw.BearerFromContext(l.ctx)
	valid, user := l.svcCtx.Auth.SessionCheck(l.ctx, bearer)
	if !valid {
		return nil, chatsvc.ErrUnauthorized
	}

	result, err := l.svcCtx.Chat.Personalize(l.ctx, collab.UserProfile{ID: user.ID, Tier: string(user.Tier)}, req.Preferences)
	if err != nil {
		return nil, err
	}
	return &types.PersonalizeResponse{
		Recommendations:     result.Recommendations,
		PersonalizedContent: result.PersonalizedContent,
	}, nil
}
