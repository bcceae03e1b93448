package analytics

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/assadsharif/chatkit-core/internal/mw"
	"github.com/assadsharif/chatkit-core/internal/svc"
	"github.com/assadsharif/chatkit-core/internal/types"
)

type EventLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewEventLogic(ctx context.Context, svcCtx *svc.ServiceContext) *EventLogic {
	return &EventLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Event accepts an optionally-authenticated analytics event (§6): a bearer
// resolves to a user id when present and valid, otherwise the event is
// recorded anonymously.
func (l *EventLogic) Event(req *types.AnalyticsEventRequest) (*types.AnalyticsEventResponse, error) {
	bearer := mw.BearerFromContext(l.ctx)
	userID, sessionID := "", ""
	if bearer != "" {
		if valid, user := l.svcCtx.Auth.SessionCheck(l.ctx, bearer); valid {
			userID = user.ID
		} else {
			sessionID = bearer
		}
	}

	event, err := l.svcCtx.Analytics.Record(l.ctx, userID, sessionID, req.EventType, req.EventData)
	if err != nil {
		return nil, err
	}
	return &types.AnalyticsEventResponse{EventID: event.ID, LoggedAt: event.Timestamp.Unix()}, nil
}
