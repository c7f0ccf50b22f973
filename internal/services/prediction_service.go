package services

import (
	"context"
	"time"

	"liquor-analytics/internal/models"
	"liquor-analytics/internal/prediction"
	"liquor-analytics/internal/repository"
	"liquor-analytics/pkg/logging"
	"liquor-analytics/pkg/metrics"
)

// PredictionService serves sensory score predictions from trained models
type PredictionService struct {
	repo      repository.BatchRepository
	predictor *prediction.Predictor
	logger    *logging.StructuredLogger
	metrics   *metrics.Collector
}

// NewPredictionService creates a new prediction service
func NewPredictionService(
	repo repository.BatchRepository,
	predictor *prediction.Predictor,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *PredictionService {
	return &PredictionService{
		repo:      repo,
		predictor: predictor,
		logger:    logger,
		metrics:   metricsCollector,
	}
}

// Predict scores a manually supplied feature vector
func (s *PredictionService) Predict(ctx context.Context, target string, features map[string]float64, sel prediction.Selector) (*models.PredictionResult, error) {
	startTime := time.Now()

	result, err := s.predictor.Predict(ctx, target, features, sel)

	if s.metrics != nil {
		s.metrics.PredictionDuration.Observe(time.Since(startTime).Seconds())
		status := "success"
		if err != nil {
			status = "failed"
		}
		algorithm := string(sel.Algorithm)
		if sel.Latest {
			algorithm = "latest"
		}
		s.metrics.RecordPrediction(target, algorithm, status)
	}

	return result, err
}

// PredictLot scores the most recent analysis of an existing LOT. Only
// measured features are passed through; an unmeasured feature the model
// requires surfaces as a schema mismatch rather than being fabricated.
func (s *PredictionService) PredictLot(ctx context.Context, target, lotNumber string, sel prediction.Selector) (*models.PredictionResult, error) {
	rec, err := s.repo.GetLatestByLot(ctx, lotNumber)
	if err != nil {
		return nil, err
	}

	return s.Predict(ctx, target, rec.FeatureMap(), sel)
}
