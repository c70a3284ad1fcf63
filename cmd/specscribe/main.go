package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/gobeaver/specscribe"
	_ "github.com/gobeaver/specscribe/driver/local"
	_ "github.com/gobeaver/specscribe/driver/memory"
	"github.com/gobeaver/specscribe/internal/generate"
	"github.com/gobeaver/specscribe/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		slog.Error("specscribe failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// A .env file is optional; the environment alone is enough.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	cfg, err := specscribe.GetConfig()
	if err != nil {
		return err
	}

	staging, err := specscribe.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.WatchStaging {
		watchStaging(ctx, staging, logger)
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(staging, generate.NewCanned(),
		server.WithLogger(logger),
		server.WithCORSOrigins(strings.Split(cfg.CORSOrigins, ",")...),
	)

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting specscribe",
			slog.String("addr", cfg.Addr()),
			slog.String("driver", cfg.Driver),
			slog.String("checksum", cfg.ChecksumAlgorithm),
		)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// watchStaging logs activity under every document kind. Drivers without
// watch support are skipped.
func watchStaging(ctx context.Context, staging *specscribe.StagingArea, logger *slog.Logger) {
	for _, kind := range specscribe.Kinds() {
		_, err := staging.OnStaged(ctx, kind, func() {
			logger.Info("staging changed", slog.String("kind", string(kind)))
		})
		if err != nil {
			logger.Warn("staging watch unavailable", slog.String("kind", string(kind)), slog.Any("error", err))
			return
		}
	}
}
