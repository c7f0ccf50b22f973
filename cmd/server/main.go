package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"liquor-analytics/internal/config"
	"liquor-analytics/internal/handlers"
	"liquor-analytics/internal/prediction"
	"liquor-analytics/internal/registry"
	"liquor-analytics/internal/reports"
	"liquor-analytics/internal/repository"
	"liquor-analytics/internal/services"
	"liquor-analytics/internal/storage"
	"liquor-analytics/pkg/database"
	"liquor-analytics/pkg/logging"
	"liquor-analytics/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logLevel := logging.ParseLevel(cfg.Logging.Level)
	logger := logging.NewStructuredLogger("liquor-analytics-api", logLevel)

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting liquor analytics API server", logging.Fields{
		"server_host":  cfg.Server.Host,
		"server_port":  cfg.Server.Port,
		"db_host":      cfg.Database.Host,
		"db_name":      cfg.Database.Database,
		"registry_dir": cfg.Registry.Dir,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("liquor_analytics")

	// Initialize database
	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}

	db, err := database.NewPostgresDB(dbConfig, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	// Initialize repository and model registry
	batchRepo := repository.NewBatchRepository(db, logger, metricsCollector)

	modelRegistry, err := registry.New(cfg.Registry.Dir, logger)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to open model registry", logging.Fields{
			"dir": cfg.Registry.Dir,
		}, err)
	}

	// Initialize pipeline components
	trainer := prediction.NewTrainer(logger, metricsCollector)
	predictor := prediction.NewPredictor(modelRegistry, logger)

	// Initialize services
	lotService := services.NewLotService(batchRepo, logger, metricsCollector)
	trainingService := services.NewTrainingService(batchRepo, trainer, modelRegistry, logger, metricsCollector)
	predictionService := services.NewPredictionService(batchRepo, predictor, logger, metricsCollector)
	analyticsService := services.NewAnalyticsService(batchRepo, logger, metricsCollector)

	// Optional components, enabled by configuration
	var reportService *services.ReportService
	if cfg.OpenAIEnabled() {
		generator := reports.NewGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger)
		reportService = services.NewReportService(batchRepo, predictionService, generator, logger, metricsCollector)
	} else {
		logger.Warn(ctx, "[STARTUP] Flavor report generation disabled, no OpenAI API key configured", logging.Fields{})
	}

	var exportStore *storage.ExportStore
	if cfg.MinioEnabled() {
		exportStore, err = storage.NewExportStore(
			ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
			logger,
		)
		if err != nil {
			logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to export storage", logging.Fields{
				"endpoint": cfg.Minio.Endpoint,
			}, err)
		}
	} else {
		logger.Warn(ctx, "[STARTUP] Export uploads disabled, no MinIO endpoint configured", logging.Fields{})
	}

	// Initialize handlers
	apiHandler := handlers.NewAPIHandler(
		lotService,
		trainingService,
		predictionService,
		analyticsService,
		reportService,
		exportStore,
		modelRegistry,
		logger,
		metricsCollector,
	)

	// Setup router
	router := mux.NewRouter()

	// Register routes
	apiHandler.RegisterRoutes(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
