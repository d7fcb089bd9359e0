package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	logpkg "github.com/4RCAN3/EmoFlix/internal/logger"
	chiTransport "github.com/4RCAN3/EmoFlix/internal/transport/chi"
	"github.com/4RCAN3/EmoFlix/internal/version"
)

func newServeCmd(rt *runtimeEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Load the embedding artifact (building it on first run) and serve
GET /, POST /recommend, GET /health and GET /metrics. SIGHUP reloads the artifact.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), rt)
		},
	}
}

func serve(ctx context.Context, rt *runtimeEnv) error {
	cfg, logger := rt.cfg, rt.logger
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logpkg.ContextWithLogger(ctx, logger)

	logger.Info("Starting EmoFlix API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", rt.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.startCatalog(ctx); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	server := chiTransport.NewServer(a.recommend, a.health, logger)
	r := chiTransport.NewRouter(server, logger, cfg.Auth.APIKeys)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	defer signal.Stop(reload)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	for {
		select {
		case err := <-serveErr:
			return fmt.Errorf("http server: %w", err)
		case <-reload:
			// In-flight requests keep the snapshot they started with.
			if err := a.loadCatalog(ctx, false); err != nil {
				logger.Error("Catalog reload failed, keeping current catalog", zap.Error(err))
			}
		case <-quit:
			logger.Info("Received shutdown signal")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Error during shutdown", zap.Error(err))
			}

			logger.Info("Server stopped gracefully")
			return nil
		}
	}
}
