package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/contentstudio-dev/gateway/internal/config"
	"github.com/contentstudio-dev/gateway/internal/executor"
	"github.com/contentstudio-dev/gateway/internal/logging"
	"github.com/contentstudio-dev/gateway/internal/ratelimit"
	"github.com/contentstudio-dev/gateway/internal/repository"
	"github.com/contentstudio-dev/gateway/internal/service"
	"github.com/contentstudio-dev/gateway/internal/stream"
	v1 "github.com/contentstudio-dev/gateway/internal/transport/http/v1"
	"github.com/contentstudio-dev/gateway/policy"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Init(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	logging.Info("starting gateway",
		zap.Int("http_port", cfg.HTTPPort),
		zap.String("database", cfg.DatabaseURL),
		zap.String("policy_file", cfg.PolicyFile))

	// Policy table and authorization engine
	registry, err := policy.LoadRegistry(cfg.PolicyFile)
	if err != nil {
		logging.Error("failed to load policy registry", zap.Error(err))
		os.Exit(1)
	}

	ctx := context.Background()
	engine, err := policy.NewEngine(ctx, registry)
	if err != nil {
		logging.Error("failed to initialize policy engine", zap.Error(err))
		os.Exit(1)
	}

	// Durable store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		logging.Error("failed to initialize store", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	// Execution backends
	local := executor.NewLocal()
	sandbox := executor.NewSandbox(cfg.SandboxQueueSize, local)
	sandbox.Start()
	defer sandbox.Stop()
	remote := executor.NewRemote(cfg.RemoteExecURL, cfg.RemoteTimeout())
	dispatcher := executor.NewDispatcher(local, sandbox, remote)

	// Operator notification hub
	hub := stream.NewHub()

	svc := service.New(db, registry, engine, ratelimit.New(), dispatcher, hub)

	h := v1.NewHandler(svc, hub)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h.RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logging.Error("server stopped", zap.Error(err))
			os.Exit(1)
		}
	}()

	logging.Info("gateway started", zap.Int("port", cfg.HTTPPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info("shutting down gateway")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error("failed to shutdown gracefully", zap.Error(err))
	}

	logging.Info("gateway stopped")
}
