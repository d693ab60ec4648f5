package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"ai-kitchen/internal/app"
	"ai-kitchen/internal/config"
	"ai-kitchen/internal/database"
	"ai-kitchen/internal/handler"
	"ai-kitchen/internal/logger"
	"ai-kitchen/internal/metrics"
	"ai-kitchen/internal/middleware"
	"ai-kitchen/internal/telegram"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		return err
	}
	if err := cfg.RequireServer(); err != nil {
		return err
	}
	log := logger.SetupDefault(os.Stdout, cfg.LogLevel)

	ctx := context.Background()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	rt, err := app.Wire(ctx, cfg, db.SQL, collector)
	if err != nil {
		return err
	}
	defer rt.Close()

	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		Actions:           rt.App,
		Logger:            log,
		JWTSecret:         []byte(cfg.JWTSecret),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Gatherer:          reg,
		DataPath:          filepath.Dir(cfg.DatabasePath),
	}
	if cfg.TelegramBotToken != "" {
		bot, err := telegram.NewBot(cfg, rt.App, rt.Usage)
		if err != nil {
			return err
		}
		deps.TelegramWebhook = bot.WebhookHandler()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening",
			slog.String("port", cfg.Port),
			slog.String("provider", cfg.LLMProvider),
			slog.Bool("fetch_images", cfg.FetchImages),
			slog.Bool("voice", cfg.VoiceEnabled()),
			slog.Bool("telegram", deps.TelegramWebhook != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		slog.Info("shutting down server", slog.String("signal", sig.String()))
	}

	// Plan generation can run for minutes; give it time to finish or
	// compensate before the process exits.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("server exited")
	return nil
}
