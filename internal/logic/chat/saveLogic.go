package chat

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/assadsharif/chatkit-core/internal/chatsvc"
	"github.com/assadsharif/chatkit-core/internal/mw"
	"github.com/assadsharif/chatkit-core/internal/svc"
	"github.com/assadsharif/chatkit-core/internal/types"
)

type SaveLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSaveLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SaveLogic {
	return &SaveLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *SaveLogic) Save(req *types.SaveRequest) (*types.SaveResponse, error) {
	bearer := mw.BearerFromContext(l.ctx)
	valid, user := l.svcCtx.Auth.SessionCheck(l.ctx, bearer)
	if !valid {
		return nil, chatsvc.ErrUnauthorized
	}

	messages := make([]chatsvc.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, chatsvc.Message{Role: m.Role, Content: m.Content})
	}

	saved, err := l.svcCtx.Chat.Save(l.ctx, user.ID, req.Title, messages)
	if err != nil {
		return nil, err
	}
	return &types.SaveResponse{ChatID: saved.ID, SavedAt: saved.SavedAt.Unix()}, nil
}
