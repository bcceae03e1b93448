package store

import (
	"context"
	"time"
)

// Store is the narrow, transactional interface every other component
// borrows through (§4.1). No component reaches around it to touch the
// database directly.
type Store interface {
	CreateUser(ctx context.Context, email string, consent bool) (User, error)
	GetUserByID(ctx context.Context, userID string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	MarkUserVerified(ctx context.Context, userID string) error

	PutVerificationToken(ctx context.Context, email, token string, expiresAt time.Time) error
	ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (email string, err error)

	CreateSession(ctx context.Context, userID string, ttl time.Duration, now time.Time) (Session, error)
	LookupSession(ctx context.Context, token string, now time.Time) (Session, User, error)
	ExtendOrRotateSession(ctx context.Context, oldToken string, ttl, grace time.Duration, now time.Time) (newToken string, err error)
	DeleteSession(ctx context.Context, token string) error

	CheckAndBumpRate(ctx context.Context, subject, action string, max int, window time.Duration, now time.Time) (RateDecision, error)

	AppendEvent(ctx context.Context, event AnalyticsEvent) error

	SaveChat(ctx context.Context, userID, title string, messages []byte, now time.Time) (SavedChat, error)

	PruneExpired(ctx context.Context, now time.Time) error

	Ping(ctx context.Context) error
	Close() error
}
