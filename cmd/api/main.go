package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/moonwatch/memetracker/internal/application/services"
	"github.com/moonwatch/memetracker/internal/config"
	"github.com/moonwatch/memetracker/internal/domain/repositories"
	"github.com/moonwatch/memetracker/internal/infrastructure/cache"
	"github.com/moonwatch/memetracker/internal/infrastructure/database"
	"github.com/moonwatch/memetracker/internal/presentation/handlers"
	"github.com/moonwatch/memetracker/internal/presentation/middleware"
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

	logger.Info("Starting memetracker API",
		zap.Int("port", cfg.API.Port),
	)

	// Connect to database. A missing or unreachable store does not stop
	// the server; listing requests surface a configuration error until
	// the store is available.
	var (
		db          *database.PostgresDB
		tokenRepo   repositories.TokenRepository
		listingRepo repositories.ListingRepository
		runRepo     repositories.RunRepository
	)
	if !cfg.Database.Configured() {
		logger.Warn("Database not configured, listing requests will fail")
	} else {
		db, err = database.NewPostgresDB(cfg.Database, logger)
		if err != nil {
			logger.Error("Failed to connect to database, listing requests will fail", zap.Error(err))
		} else {
			defer db.Close()
			tokenRepo = database.NewTokenRepo(db.DB())
			listingRepo = database.NewListingRepo(db.DB())
			runRepo = database.NewRunRepo(db.DB())
		}
	}

	// Connect to Redis cache (optional)
	var redisCache *cache.RedisCache
	redisCache, err = cache.NewRedisCache(cfg.Redis, cfg.API.CacheTTL, logger)
	if err != nil {
		logger.Warn("Failed to connect to Redis, running without cache", zap.Error(err))
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	// Create services
	memecoinService, err := services.NewMemecoinService(listingRepo, tokenRepo, redisCache, cfg.Listing, logger)
	if err != nil {
		logger.Fatal("Failed to create memecoin service", zap.Error(err))
	}
	statsService := services.NewStatsService(listingRepo, runRepo, logger)

	// Create handlers
	memecoinHandler := handlers.NewMemecoinHandler(memecoinService, logger)
	statsHandler := handlers.NewStatsHandler(statsService, logger)

	var dbChecker, cacheChecker handlers.HealthChecker
	if db != nil {
		dbChecker = db
	}
	if redisCache != nil {
		cacheChecker = redisCache
	}
	healthHandler := handlers.NewHealthHandler(dbChecker, cacheChecker)

	// Setup router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RateLimiter(cfg.API.RateLimitRPS))

	// Health endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Get("/live", healthHandler.Live)
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	memecoinHandler.RegisterRoutes(r)
	r.Get("/stats", statsHandler.GetStats)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	// Run server in goroutine
	go func() {
		logger.Info("API server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
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
