package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/review-collector/internal/api/router"
	appconfig "github.com/wolfman30/review-collector/internal/config"
	"github.com/wolfman30/review-collector/internal/conversation"
	"github.com/wolfman30/review-collector/internal/messaging"
	"github.com/wolfman30/review-collector/internal/observability/metrics"
	"github.com/wolfman30/review-collector/internal/review"
	"github.com/wolfman30/review-collector/pkg/logging"
)

func main() {
	// Load configuration (.env is a dev convenience, absent in production)
	_ = godotenv.Load()
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting review-collector API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Initialize stores
	var (
		states  conversation.Store
		reviews review.Store
	)
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			cancel()
			logger.Error("failed to create pgx pool", "error", err)
			os.Exit(1)
		}
		if err := pool.Ping(ctx); err != nil {
			cancel()
			logger.Error("failed to reach database", "error", err)
			os.Exit(1)
		}
		cancel()
		defer pool.Close()
		states = conversation.NewPostgresStore(pool)
		reviews = review.NewPostgresStore(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		reviews = review.NewInMemoryStore()
		states = conversation.NewInMemoryStore(reviews)
	}

	// Optional Redis-backed webhook dedupe
	var deduper messaging.Deduper
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer func() { _ = client.Close() }()
		deduper = messaging.NewRedisDeduper(client, cfg.WebhookDedupeTTL)
	}

	// Initialize engine and handlers
	conversationMetrics := metrics.NewConversationMetrics(nil)
	webhookMetrics := metrics.NewWebhookMetrics(nil)
	engine := conversation.NewEngine(states, conversationMetrics, logger)
	webhookHandler := messaging.NewHandler(cfg.TwilioAuthToken, cfg.TwilioValidateSignature, engine, deduper, webhookMetrics, logger)
	reviewsHandler := review.NewHandler(reviews, logger)

	// Setup router
	r := router.New(&router.Config{
		Logger:             logger,
		WebhookHandler:     webhookHandler,
		ReviewsHandler:     reviewsHandler,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
