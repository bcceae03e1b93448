package chat

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/assadsharif/chatkit-core/internal/chatsvc"
	"github.com/assadsharif/chatkit-core/internal/mw"
	"github.com/assadsharif/chatkit-core/internal/reqctx"
	"github.com/assadsharif/chatkit-core/internal/svc"
	"github.com/assadsharif/chatkit-core/internal/types"
)

type ChatLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewChatLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ChatLogic {
	return &ChatLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Chat serves an optionally-authenticated request (§6): a bearer may be
// present but is not required, so an anonymous caller still gets an answer.
func (l *ChatLogic) Chat(req *types.ChatRequest) (*types.ChatResponse, error) {
	requestID, _ := reqctx.RequestIDFromContext(l.ctx)
	_ = mw.BearerFromContext(l.ctx) // tier is caller-declared per §6; bearer presence does not change Chat's behavior

	in := chatsvc.ChatInput{
		Message:      req.Message,
		Mode:         req.Context.Mode,
		SelectedText: req.Context.SelectedText,
		PageURL:      req.Context.PageURL,
		SessionID:    req.Context.SessionID,
		Tier:         req.Tier,
	}

	result, err := l.svcCtx.Chat.Chat(l.ctx, in, requestID)
	if err != nil {
		return nil, err
	}

	sources := make([]types.ChatSource, 0, len(result.Sources))
	for _, s := range result.Sources {
		sources = append(sources, types.ChatSource{
			ID:      s.ID,
			Title:   s.Title,
			URL:     s.URL,
			Excerpt: s.Excerpt,
			Score:   s.Score,
		})
	}

	return &types.ChatResponse{
		Answer:  result.Answer,
		Sources: sources,
		Metadata: types.ChatMetadata{
			Model:            result.Metadata.Model,
			TokensUsed:       result.Metadata.TokensUsed,
			RetrievalTimeMs:  result.Metadata.RetrievalTimeMs,
			GenerationTimeMs: result.Metadata.GenerationTimeMs,
			TotalTimeMs:      result.Metadata.TotalTimeMs,
		},
	}, nil
}
