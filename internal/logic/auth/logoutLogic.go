package auth

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/assadsharif/chatkit-core/internal/mw"
	"github.com/assadsharif/chatkit-core/internal/svc"
)

type LogoutLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewLogoutLogic(ctx context.Context, svcCtx *svc.ServiceContext) *LogoutLogic {
	return &LogoutLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Logout is idempotent (§8): deleting an already-gone session still
// returns success, since the caller's goal — "this token no longer works"
// — already holds.
func (l *LogoutLogic) Logout() error {
	bearer := mw.BearerFromContext(l.ctx)
	return l.svcCtx.Auth.Logout(l.ctx, bearer)
}
