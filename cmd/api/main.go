package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prymal/inventory-metrics/internal/alerts"
	"github.com/prymal/inventory-metrics/internal/api"
	"github.com/prymal/inventory-metrics/internal/cache"
	"github.com/prymal/inventory-metrics/internal/config"
	"github.com/prymal/inventory-metrics/internal/service"
	"github.com/prymal/inventory-metrics/internal/warehouse/postgres"
	"github.com/prymal/inventory-metrics/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize warehouse connection
	db, err := postgres.NewDB(&cfg.Warehouse)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to connect to warehouse")
	}
	defer db.Close()

	// Initialize snapshot cache (noop when disabled)
	snapshotCache, err := cache.NewSnapshotCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("snapshot cache unavailable, continuing without it")
		snapshotCache = cache.NewNoopSnapshotCache()
	}

	// Initialize services
	metricRepo := postgres.NewMetricRepository(db)
	metricsService := service.NewMetricsService(
		metricRepo,
		metricRepo,
		snapshotCache,
		alerts.ThresholdsFromConfig(cfg.Alerts),
	)

	// Initialize HTTP server
	router := api.NewRouter(metricsService, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
