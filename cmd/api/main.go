package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/zeedivx/web-starter/internal/auth"
	"github.com/zeedivx/web-starter/internal/config"
	"github.com/zeedivx/web-starter/internal/httpapi"
	"github.com/zeedivx/web-starter/internal/logging"
	"github.com/zeedivx/web-starter/internal/postgres"
	"github.com/zeedivx/web-starter/internal/repository"
	"github.com/zeedivx/web-starter/internal/server"
	"github.com/zeedivx/web-starter/internal/service"
)

// Overridden at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if _, err := logging.New(cfg.Debug, cfg.LogFile); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	server.Banner(cfg, version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	hasher := auth.NewPasswordHasher(cfg.Auth.ArgonTime, cfg.Auth.ArgonMemoryKiB, cfg.Auth.ArgonThreads)
	userRepo := repository.NewUserRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)

	users := service.NewUserService(userRepo, sessionRepo, hasher)
	sessions := service.NewSessionService(sessionRepo, cfg.Auth.SessionTTL)

	api := httpapi.New(cfg, zap.L(), users, sessions, pool, version)
	return server.New(cfg, zap.L(), api.Routes(), sessions).Run(ctx)
}
