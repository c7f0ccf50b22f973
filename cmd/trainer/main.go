package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"liquor-analytics/internal/config"
	"liquor-analytics/internal/models"
	"liquor-analytics/internal/prediction"
	"liquor-analytics/internal/registry"
	"liquor-analytics/internal/repository"
	"liquor-analytics/internal/services"
	"liquor-analytics/pkg/database"
	"liquor-analytics/pkg/logging"
	"liquor-analytics/pkg/metrics"
)

func main() {
	// Parse command-line flags
	target := flag.String("target", "all", "Sensory target to train (aroma_score, taste_score, finish_score, overall_score, or all)")
	algorithmName := flag.String("algorithm", "random-forest", "Training algorithm (random-forest, gradient-boosting, linear, ridge, lasso)")
	analysisTypes := flag.String("analysis-types", "", "Comma-separated analysis types to train on (default: initial,aging)")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	algorithm, err := models.ParseAlgorithm(*algorithmName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid algorithm: %v\n", err)
		os.Exit(1)
	}

	filter := prediction.DefaultRecordFilter()
	if *analysisTypes != "" {
		filter = prediction.RecordFilter{}
		for _, raw := range strings.Split(*analysisTypes, ",") {
			at, err := models.ParseAnalysisType(strings.TrimSpace(raw))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid analysis type: %v\n", err)
				os.Exit(1)
			}
			filter.AnalysisTypes = append(filter.AnalysisTypes, at)
		}
	}

	// Initialize logger
	logLevel := logging.ParseLevel(cfg.Logging.Level)
	logger := logging.NewStructuredLogger("liquor-analytics-trainer", logLevel)

	ctx := context.Background()
	logger.Info(ctx, "[TRAINER_START] Starting model training run", logging.Fields{
		"target":       *target,
		"algorithm":    string(algorithm),
		"registry_dir": cfg.Registry.Dir,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("liquor_analytics_trainer")

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
		logger.Fatal(ctx, "[TRAINER_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	// Initialize repository and registry
	batchRepo := repository.NewBatchRepository(db, logger, metricsCollector)

	modelRegistry, err := registry.New(cfg.Registry.Dir, logger)
	if err != nil {
		logger.Fatal(ctx, "[TRAINER_ERROR] Failed to open model registry", logging.Fields{
			"dir": cfg.Registry.Dir,
		}, err)
	}

	// Initialize training service
	trainer := prediction.NewTrainer(logger, metricsCollector)
	trainingService := services.NewTrainingService(batchRepo, trainer, modelRegistry, logger, metricsCollector)

	// Train
	var trained []*models.TrainedModel
	failures := map[string]string{}

	if *target == "all" {
		result, err := trainingService.TrainAll(ctx, algorithm, filter)
		if err != nil {
			logger.Fatal(ctx, "[TRAINING_ERROR] Training run failed", logging.Fields{}, err)
		}
		trained = result.Models
		failures = result.Errors
	} else {
		model, err := trainingService.Train(ctx, *target, algorithm, filter)
		if err != nil {
			failures[*target] = err.Error()
		} else {
			trained = append(trained, model)
		}
	}

	// Print results
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("TRAINING COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Algorithm:        %s\n", algorithm)
	fmt.Printf("Models Trained:   %d\n", len(trained))
	fmt.Printf("Failures:         %d\n", len(failures))

	for _, m := range trained {
		fmt.Printf("\n%s\n", m.Target)
		fmt.Printf("  Training Rows: %d\n", m.TrainingRows)
		fmt.Printf("  R2:            %.4f\n", m.Metrics.R2)
		fmt.Printf("  MAE:           %.4f\n", m.Metrics.MAE)
		fmt.Printf("  RMSE:          %.4f\n", m.Metrics.RMSE)
		for _, w := range m.Warnings {
			fmt.Printf("  Warning:       %s\n", w)
		}
	}

	if len(failures) > 0 {
		fmt.Printf("\nFailures (%d):\n", len(failures))
		for t, msg := range failures {
			fmt.Printf("  - %s: %s\n", t, msg)
		}
	}

	logger.Info(ctx, "[TRAINER_COMPLETE] Training run finished", logging.Fields{
		"models_trained": len(trained),
		"failures":       len(failures),
	})

	if len(trained) == 0 && len(failures) > 0 {
		os.Exit(1)
	}
}
