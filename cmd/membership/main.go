// Package main Content Gate API
//
// @title           Content Gate API
// @version         1.0
// @description     API регистрации пользователей, подписок и каталога видео с премиум-доступом

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/magabrotheeeer/content-gate/internal/app/membership"
	"github.com/magabrotheeeer/content-gate/internal/config"
)

const (
	envLocal = "local"
	envDev   = "dev"

	sentryFlushTimeout = 2 * time.Second
)

func main() {
	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env)

	logger.Info("starting membership service", slog.String("env", cfg.Env))
	logger.Debug("config loaded", slog.String("config", cfg.String()))

	flush := func(time.Duration) bool { return true }
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Env,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
		}); err != nil {
			logger.Error("sentry init failed", slog.Any("err", err))
		} else {
			flush = sentry.Flush
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := exitCode(run(ctx, cfg, logger), logger, flush)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	app, err := membership.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	return app.Run(ctx)
}

// exitCode логирует итог работы и отправляет накопленные события sentry до выхода.
func exitCode(err error, logger *slog.Logger, flush func(time.Duration) bool) int {
	code := 0
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("app stopped with error", slog.Any("err", err))
		code = 1
	} else {
		logger.Info("membership service stopped gracefully")
	}
	flush(sentryFlushTimeout)
	return code
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}
