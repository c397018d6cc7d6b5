package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/moonwatch/memetracker/internal/application/services"
	"github.com/moonwatch/memetracker/internal/config"
	"github.com/moonwatch/memetracker/internal/infrastructure/bitquery"
	"github.com/moonwatch/memetracker/internal/infrastructure/cache"
	"github.com/moonwatch/memetracker/internal/infrastructure/database"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.Log.Level)
	defer logger.Sync()

	logger.Info("Starting memetracker ingester",
		zap.String("feed_url", cfg.Feed.URL),
		zap.String("protocol", cfg.Feed.Protocol),
		zap.Duration("poll_interval", cfg.Ingester.PollInterval),
	)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := database.NewPostgresDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure schema", zap.Error(err))
	}

	// Connect to Redis for post-run cache invalidation (optional)
	var invalidator services.CacheInvalidator
	redisCache, err := cache.NewRedisCache(cfg.Redis, cfg.API.CacheTTL, logger)
	if err != nil {
		logger.Warn("Failed to connect to Redis, skipping cache invalidation", zap.Error(err))
	} else {
		defer redisCache.Close()
		invalidator = redisCache
	}

	// Create repositories
	tokenRepo := database.NewTokenRepo(db.DB())
	priceRepo := database.NewPriceRepo(db.DB())
	runRepo := database.NewRunRepo(db.DB())

	// Create feed client
	feedClient := bitquery.NewClient(cfg.Feed, logger)

	// Create ingester service
	ingester := services.NewIngesterService(
		feedClient,
		tokenRepo,
		priceRepo,
		runRepo,
		invalidator,
		cfg.Ingester,
		logger,
	)

	// Start ingester
	ingester.Start(ctx)

	// Start metrics server
	go startMetricsServer(cfg.Ingester.MetricsPort, logger)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, stopping ingester...")

	// Graceful shutdown
	ingester.Stop()

	logger.Info("Ingester stopped")
}

func setupLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := config.Build()
	return logger
}

func startMetricsServer(port int, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", zap.String("addr", addr))

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Metrics server error", zap.Error(err))
	}
}
