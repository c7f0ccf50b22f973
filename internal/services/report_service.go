package services

import (
	"context"
	"time"

	"liquor-analytics/internal/flavor"
	"liquor-analytics/internal/models"
	"liquor-analytics/internal/prediction"
	"liquor-analytics/internal/registry"
	"liquor-analytics/internal/reports"
	"liquor-analytics/internal/repository"
	"liquor-analytics/pkg/logging"
	"liquor-analytics/pkg/metrics"
)

// ReportService assembles flavor report inputs from stored measurements,
// model predictions, and the flavor-chemistry reference table
type ReportService struct {
	repo       repository.BatchRepository
	prediction *PredictionService
	generator  *reports.Generator
	logger     *logging.StructuredLogger
	metrics    *metrics.Collector
}

// NewReportService creates a new report service
func NewReportService(
	repo repository.BatchRepository,
	predictionService *PredictionService,
	generator *reports.Generator,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *ReportService {
	return &ReportService{
		repo:       repo,
		prediction: predictionService,
		generator:  generator,
		logger:     logger,
		metrics:    metricsCollector,
	}
}

// FlavorReport generates a narrative report for a LOT. Recorded sensory
// scores are used when present; otherwise, when usePredictions is set,
// latest-model predictions fill the gaps for targets that have a trained
// model. Targets without scores or models are simply omitted.
func (s *ReportService) FlavorReport(ctx context.Context, lotNumber string, usePredictions bool) (*reports.Report, error) {
	startTime := time.Now()

	rec, err := s.repo.GetLatestByLot(ctx, lotNumber)
	if err != nil {
		s.recordOutcome("failed")
		return nil, err
	}

	chemical := rec.FeatureMap()

	scores := make(map[string]float64)
	predicted := false
	for _, target := range models.TargetNames() {
		if v := rec.Target(target); v != nil {
			scores[target] = *v
			continue
		}
		if !usePredictions {
			continue
		}
		result, err := s.prediction.Predict(ctx, target, chemical, prediction.Selector{Latest: true})
		if err != nil {
			// No model or incomplete input for this target; leave it out
			if _, ok := err.(*registry.NotFoundError); ok {
				continue
			}
			if _, ok := err.(*prediction.SchemaMismatchError); ok {
				continue
			}
			s.recordOutcome("failed")
			return nil, err
		}
		scores[target] = result.Value
		predicted = true
	}

	in := reports.Input{
		LotNumber:       rec.LotNumber,
		ProductName:     rec.ProductName,
		Chemical:        chemical,
		Scores:          scores,
		ScoresPredicted: predicted,
		Compounds:       flavor.Relevant(chemical),
	}
	if rec.Notes != nil {
		in.TastingNotes = *rec.Notes
	}

	report, err := s.generator.FlavorReport(ctx, in)
	if err != nil {
		s.recordOutcome("failed")
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ReportDuration.Observe(time.Since(startTime).Seconds())
	}
	s.recordOutcome("success")

	return report, nil
}

// ComparisonReport generates a comparative analysis across the given
// LOTs. The focus LOT is included automatically when absent from the
// list; at least two distinct LOTs are required. Only recorded scores
// go into the comparison, predictions are not mixed in.
func (s *ReportService) ComparisonReport(ctx context.Context, focusLot string, lotNumbers []string) (*reports.Report, error) {
	startTime := time.Now()

	lots := make([]string, 0, len(lotNumbers)+1)
	seen := make(map[string]bool)
	for _, lot := range append([]string{focusLot}, lotNumbers...) {
		if lot == "" || seen[lot] {
			continue
		}
		seen[lot] = true
		lots = append(lots, lot)
	}
	if len(lots) < 2 {
		return nil, &models.ValidationError{
			Field:   "lot_numbers",
			Message: "comparison requires at least two distinct LOTs",
		}
	}

	in := reports.ComparisonInput{FocusLot: focusLot}
	for _, lot := range lots {
		rec, err := s.repo.GetLatestByLot(ctx, lot)
		if err != nil {
			s.recordOutcome("failed")
			return nil, err
		}

		scores := make(map[string]float64)
		for _, target := range models.TargetNames() {
			if v := rec.Target(target); v != nil {
				scores[target] = *v
			}
		}

		in.Lots = append(in.Lots, reports.Input{
			LotNumber:   rec.LotNumber,
			ProductName: rec.ProductName,
			Chemical:    rec.FeatureMap(),
			Scores:      scores,
		})
	}

	report, err := s.generator.ComparisonReport(ctx, in)
	if err != nil {
		s.recordOutcome("failed")
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ReportDuration.Observe(time.Since(startTime).Seconds())
	}
	s.recordOutcome("success")

	return report, nil
}

func (s *ReportService) recordOutcome(status string) {
	if s.metrics != nil {
		s.metrics.ReportsGeneratedTotal.WithLabelValues(status).Inc()
	}
}

