// Code in the teacher's goctl-scaffolded entrypoint style (growthapi.go):
// load config, build the rest.Server, wire the ServiceContext, register
// routes, serve. Config loading is generalized from conf.MustLoad's yaml
// file to this service's environment-variable Config (§4.2), and the
// wildcard rest.WithCors("*") is dropped since CORS here is handled inside
// the per-route middleware chain (internal/handler/routes.go), not by
// go-zero's built-in option.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/service"
	"github.com/zeromicro/go-zero/rest"

	"github.com/assadsharif/chatkit-core/internal/config"
	"github.com/assadsharif/chatkit-core/internal/handler"
	"github.com/assadsharif/chatkit-core/internal/svc"
)

func main() {
	c, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if c.IsSQLiteURL() {
		logx.Infof("DATABASE_URL looks like a SQLite DSN; this is allowed only outside production")
	}

	restConf := rest.RestConf{
		ServiceConf: service.ServiceConf{
			Name: "chatkit-api",
		},
		Host: c.Host,
		Port: c.Port,
	}

	server := rest.MustNewServer(restConf)
	defer server.Stop()

	svcCtx, err := svc.NewServiceContext(c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "service context: %v\n", err)
		os.Exit(1)
	}
	defer svcCtx.Store.Close()

	handler.RegisterHandlers(server, svcCtx)

	go gracefulShutdown(server, time.Duration(c.ShutdownGraceSeconds)*time.Second)

	fmt.Printf("Starting chatkit-api at %s:%d...\n", c.Host, c.Port)
	server.Start()
}

// gracefulShutdown honors §5's shutdown contract: stop accepting new
// connections, give in-flight requests up to grace to finish, then let the
// process exit. rest.Server.Stop already drains within its own internal
// timeout; this only ties that behavior to OS signals.
func gracefulShutdown(server *rest.Server, grace time.Duration) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logx.Infof("shutdown signal received, draining in-flight requests (grace=%s)", grace)
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	done := make(chan struct{})
	go func() {
		server.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logx.Errorf("shutdown grace period elapsed before server.Stop completed")
	}
	os.Exit(0)
}
