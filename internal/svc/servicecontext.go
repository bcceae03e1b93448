// Package svc wires every component built in internal/{store,ratelimit,
// auth,chatsvc,analytics,collab,metrics,clock} into one ServiceContext,
// generalizing the teacher's RPC-client ServiceContext (serviceContext.go)
// to direct in-process dependencies: this service has no downstream
// microservices to dial, so each field is a concrete collaborator instead
// of a zrpc client.
package svc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/assadsharif/chatkit-core/internal/analytics"
	"github.com/assadsharif/chatkit-core/internal/auth"
	"github.com/assadsharif/chatkit-core/internal/chatsvc"
	"github.com/assadsharif/chatkit-core/internal/clock"
	"github.com/assadsharif/chatkit-core/internal/collab"
	"github.com/assadsharif/chatkit-core/internal/config"
	"github.com/assadsharif/chatkit-core/internal/metrics"
	"github.com/assadsharif/chatkit-core/internal/obslog"
	"github.com/assadsharif/chatkit-core/internal/ratelimit"
	"github.com/assadsharif/chatkit-core/internal/store"
)

// requestDeadline is the end-to-end budget (§5) imposed on the retrieval/
// generation collaborator call.
const requestDeadline = 30 * time.Second

// ServiceContext holds every dependency a handler or logic struct needs.
type ServiceContext struct {
	Config config.Config

	Store   store.Store
	RawDB   *store.PostgresStore
	Limiter *ratelimit.Limiter

	Auth       *auth.Service
	Chat       *chatsvc.Service
	Analytics  *analytics.Service

	Clock clock.Clock
	IDs   clock.IDSource

	Metrics   *metrics.Tracker
	Logger    *obslog.Logger
	StartedAt time.Time
}

// NewServiceContext connects to Postgres (and, when configured, Redis and
// Meilisearch), then wires every service package on top of them. It is the
// single place allowed to construct the Store implementations; every other
// package only ever sees the store.Store interface.
func NewServiceContext(c config.Config) (*ServiceContext, error) {
	now := time.Now().UTC()

	db, err := store.Connect(c.DatabaseURL, c.StorePoolMaxConns)
	if err != nil {
		return nil, err
	}
	pg := store.NewPostgresStore(db, c.SecretKey)

	var backing store.Store = pg
	if c.RedisAddr != "" {
		redisClient, err := store.ConnectRedis(c.RedisAddr, c.RedisDB)
		if err != nil {
			logx.Errorf("svc: redis unavailable, sessions will bypass cache: %v", err)
		} else {
			backing = store.NewCachedStore(pg, redisClient, 5*time.Minute)
		}
	}

	clk := clock.System{}
	ids := clock.UUIDSource{}

	limiter := ratelimit.New(backing, c.RateLimits, clk.Now)

	mailer := buildMailSender(c)
	retriever := buildRetriever(c)
	personalizer := collab.DefaultPersonalization{}

	authSvc := auth.New(
		backing, clk, ids, mailer,
		time.Duration(c.SessionTTLSeconds)*time.Second,
		time.Duration(c.SessionRefreshGraceSeconds)*time.Second,
		time.Duration(c.VerificationTTLSeconds)*time.Second,
	)
	chatSvc := chatsvc.New(backing, clk, retriever, personalizer, requestDeadline)
	analyticsSvc := analytics.New(backing, clk, ids)

	tracker := metrics.New(prometheus.DefaultRegisterer, now)
	logger := obslog.New(logLevel(c))

	return &ServiceContext{
		Config:    c,
		Store:     backing,
		RawDB:     pg,
		Limiter:   limiter,
		Auth:      authSvc,
		Chat:      chatSvc,
		Analytics: analyticsSvc,
		Clock:     clk,
		IDs:       ids,
		Metrics:   tracker,
		Logger:    logger,
		StartedAt: now,
	}, nil
}

// logLevel defaults to DEBUG in integration-test mode (so seed/scenario
// runs are fully traced) and INFO otherwise.
func logLevel(c config.Config) obslog.Level {
	if c.IntegrationTestMode {
		return obslog.LevelDebug
	}
	return obslog.LevelInfo
}

// buildMailSender honors the EMAIL_ENABLED switch (§4.2) even though this
// repo carries no SMTP/provider client in its dependency pack: with
// EmailEnabled=false (the expected integration-test setting) it returns the
// noop sender quietly, the same stub-behind-a-real-interface shape the
// teacher uses for its notifications client. With EmailEnabled=true — a
// production deployment expecting real delivery — a noop sender would
// silently drop every verification email, so this logs loudly at startup
// instead of resolving to a completely inert no-op.
func buildMailSender(c config.Config) collab.MailSender {
	if c.EmailEnabled {
		logx.Errorf("svc: EMAIL_ENABLED=true but no mail provider is wired in this build; verification emails will be dropped, not sent")
	}
	return collab.NoopMailSender{}
}

// buildRetriever wires the Meilisearch-backed collaborator when a host is
// configured, else falls back to the noop sender's retrieval counterpart
// so the service still boots in environments without a search cluster.
func buildRetriever(c config.Config) collab.RetrieverGenerator {
	if c.MeiliHost == "" {
		return collab.NoopRetriever{}
	}
	retriever, err := collab.NewMeiliRetriever(c.MeiliHost, c.MeiliKey)
	if err != nil {
		logx.Errorf("svc: meilisearch unavailable, falling back to noop retriever: %v", err)
		return collab.NoopRetriever{}
	}
	return retriever
}
