package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/claritylabs/claritycheck/internal/analysis"
	"github.com/claritylabs/claritycheck/internal/api"
	"github.com/claritylabs/claritycheck/internal/backend"
	"github.com/claritylabs/claritycheck/internal/billing"
	"github.com/claritylabs/claritycheck/internal/config"
	"github.com/claritylabs/claritycheck/internal/events"
	"github.com/claritylabs/claritycheck/internal/quota"
	"github.com/claritylabs/claritycheck/internal/store"
)

func main() {
	// .env is a local-dev convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("claritycheck starting", "port", cfg.Port, "env", cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	if err := db.SeedDefaultPlans(ctx); err != nil {
		slog.Error("failed to seed subscription plans", "error", err)
		os.Exit(1)
	}

	// AI backends
	if cfg.OpenAIAPIKey == "" {
		slog.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}
	openaiClient := backend.NewOpenAIClient(cfg.OpenAIAPIKey)

	var anthropicClient backend.Client
	if cfg.AnthropicAPIKey != "" {
		anthropicClient = backend.NewAnthropicClient(cfg.AnthropicAPIKey)
		slog.Info("anthropic client ready")
	} else {
		slog.Warn("anthropic not configured, claude models unavailable")
	}

	router := backend.NewRouter(openaiClient, anthropicClient, slog.Default())

	orchestrator, err := analysis.New(router, slog.Default())
	if err != nil {
		slog.Error("failed to build analysis pipeline", "error", err)
		os.Exit(1)
	}

	// Events (optional)
	var publisher *events.Publisher
	if cfg.NatsURL != "" {
		publisher, err = events.Connect(cfg.NatsURL, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured, running without analytics events")
	}

	// Billing (optional)
	var billingClient api.BillingClient
	if cfg.BillingSecretKey != "" {
		billingClient = billing.NewClient(cfg.BillingSecretKey, slog.Default())
		slog.Info("billing client ready")
	} else {
		slog.Warn("billing not configured, subscription purchase disabled")
	}

	srv := api.NewServer(api.Options{
		Port:       cfg.Port,
		DevMode:    cfg.Development(),
		AppBaseURL: cfg.AppBaseURL,
		Store:      db,
		Analyzer:   orchestrator,
		Quota:      quota.NewTracker(db),
		Billing:    billingClient,
		Events:     publisher,
		Logger:     slog.Default(),
	})
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("claritycheck ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown error", "error", err)
	}
	cancel()
	slog.Info("claritycheck stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
