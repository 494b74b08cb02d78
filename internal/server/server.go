// Package server runs the HTTP API alongside its background session
// janitor and handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zeedivx/web-starter/internal/config"
)

// SessionCleaner removes sessions that can never validate again. The
// session service implements it.
type SessionCleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

type Server struct {
	cfg     *config.Config
	log     *zap.Logger
	http    *http.Server
	janitor SessionCleaner
}

func New(cfg *config.Config, log *zap.Logger, handler http.Handler, janitor SessionCleaner) *Server {
	return &Server{
		cfg: cfg,
		log: log,
		http: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      handler,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			IdleTimeout:  cfg.HTTP.IdleTimeout,
		},
		janitor: janitor,
	}
}

// Run serves until ctx is canceled, then drains in-flight requests within
// the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("🚀 Server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return s.runJanitor(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("Shutting down", zap.Duration("timeout", s.cfg.HTTP.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	s.log.Info("✅ Server stopped cleanly")
	return nil
}

// runJanitor sweeps dead sessions on the configured interval. With no
// cleaner or a non-positive interval it just waits for shutdown.
func (s *Server) runJanitor(ctx context.Context) error {
	interval := s.cfg.Auth.CleanupInterval
	if s.janitor == nil || interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, time.Minute)
			removed, err := s.janitor.Cleanup(sweepCtx)
			cancel()
			if err != nil {
				s.log.Warn("Session cleanup failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				s.log.Info("Session janitor pass", zap.Int64("removed", removed))
			}
		}
	}
}

// Banner prints the startup banner to stdout before structured logging
// takes over.
func Banner(cfg *config.Config, version string) {
	line := strings.Repeat("═", 67)
	fmt.Println(line)
	fmt.Printf("  %s v%s\n", cfg.AppName, version)
	fmt.Printf("  Environment: %s\n", cfg.Environment)
	fmt.Printf("  Debug mode:  %v\n", cfg.Debug)
	fmt.Println(line)
}
