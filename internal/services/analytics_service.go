package services

import (
	"context"
	"math"

	"gonum.org/v1/gonum/stat"

	"liquor-analytics/internal/models"
	"liquor-analytics/internal/prediction"
	"liquor-analytics/internal/repository"
	"liquor-analytics/pkg/logging"
	"liquor-analytics/pkg/metrics"
)

// CorrelationMatrix relates chemical features and sensory scores
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Matrix  [][]float64 `json:"matrix"`
	Rows    int         `json:"rows"`
}

// AnalyticsService computes exploratory statistics over batch records
type AnalyticsService struct {
	repo    repository.BatchRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(repo repository.BatchRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *AnalyticsService {
	return &AnalyticsService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Correlations computes the Pearson correlation matrix across all
// chemical features and sensory targets. Missing values are filled with
// the column mean, mirroring the training-time imputation strategy.
func (s *AnalyticsService) Correlations(ctx context.Context, filter prediction.RecordFilter) (*CorrelationMatrix, error) {
	records, err := s.repo.ListAllRecords(ctx)
	if err != nil {
		return nil, err
	}

	columns := append(models.FeatureNames(), models.TargetNames()...)

	var rows [][]float64
	for _, rec := range records {
		if !filter.Admits(rec.AnalysisType) {
			continue
		}
		row := make([]float64, len(columns))
		for i, name := range columns {
			v := rec.Feature(name)
			if v == nil {
				v = rec.Target(name)
			}
			if v != nil {
				row[i] = *v
			} else {
				row[i] = math.NaN()
			}
		}
		rows = append(rows, row)
	}

	if len(rows) < 2 {
		return nil, &prediction.InsufficientDataError{
			Target:   "correlation",
			Found:    len(rows),
			Required: 2,
		}
	}

	// Column-mean imputation before computing correlations
	for col := range columns {
		sum, count := 0.0, 0
		for _, row := range rows {
			if !math.IsNaN(row[col]) {
				sum += row[col]
				count++
			}
		}
		fill := 0.0
		if count > 0 {
			fill = sum / float64(count)
		}
		for _, row := range rows {
			if math.IsNaN(row[col]) {
				row[col] = fill
			}
		}
	}

	matrix := make([][]float64, len(columns))
	for i := range columns {
		matrix[i] = make([]float64, len(columns))
		xi := column(rows, i)
		for j := range columns {
			if j < i {
				matrix[i][j] = matrix[j][i]
				continue
			}
			if j == i {
				matrix[i][j] = 1
				continue
			}
			c := stat.Correlation(xi, column(rows, j), nil)
			if math.IsNaN(c) {
				c = 0 // constant column
			}
			matrix[i][j] = c
		}
	}

	s.logger.Debug(ctx, "[ANALYTICS_CORRELATIONS] Correlation matrix computed", logging.Fields{
		"rows":    len(rows),
		"columns": len(columns),
	})

	return &CorrelationMatrix{
		Columns: columns,
		Matrix:  matrix,
		Rows:    len(rows),
	}, nil
}

func column(rows [][]float64, col int) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = row[col]
	}
	return out
}
