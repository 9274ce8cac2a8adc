package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emeeran/prompt-saver-web-app/config"
	"github.com/emeeran/prompt-saver-web-app/internal/email"
	"github.com/emeeran/prompt-saver-web-app/internal/health"
	"github.com/emeeran/prompt-saver-web-app/internal/housekeeping"
	"github.com/emeeran/prompt-saver-web-app/internal/infrastructure/postgres"
	ctxlog "github.com/emeeran/prompt-saver-web-app/internal/log"
	"github.com/emeeran/prompt-saver-web-app/internal/metrics"
	"github.com/emeeran/prompt-saver-web-app/internal/session"
	"github.com/emeeran/prompt-saver-web-app/internal/token"
	httptransport "github.com/emeeran/prompt-saver-web-app/internal/transport/http"
	"github.com/emeeran/prompt-saver-web-app/internal/transport/http/handler"
	"github.com/emeeran/prompt-saver-web-app/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
		stop()
		log.Fatalf("migrate: %v", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	promptRepo := postgres.NewPromptRepository(pool)
	consumedRepo := postgres.NewConsumedTokenRepository(pool)

	// Auth
	tokens := token.NewService([]byte(cfg.SecretKey))
	sessions := session.NewManager([]byte(cfg.SecretKey))
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	gateway := email.NewGateway(sender, logger)
	authUsecase := usecase.NewAuthUsecase(userRepo, consumedRepo, tokens, gateway, cfg.BaseURL)
	authHandler := handler.NewAuthHandler(authUsecase, sessions, logger)

	// Prompts
	promptUsecase := usecase.NewPromptUsecase(promptRepo)
	promptHandler := handler.NewPromptHandler(promptUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	housekeeper := housekeeping.New(consumedRepo, logger)
	if err := housekeeper.Start(); err != nil {
		stop()
		log.Fatalf("housekeeping: %v", err)
	}

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, authHandler, promptHandler, sessions),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	housekeeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
