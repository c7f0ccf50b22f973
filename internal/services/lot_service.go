package services

import (
	"context"

	"liquor-analytics/internal/models"
	"liquor-analytics/internal/repository"
	"liquor-analytics/pkg/logging"
	"liquor-analytics/pkg/metrics"
)

// LotService handles batch record operations
type LotService struct {
	repo    repository.BatchRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewLotService creates a new lot service
func NewLotService(repo repository.BatchRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *LotService {
	return &LotService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ListRecords retrieves batch records with filtering
func (s *LotService) ListRecords(ctx context.Context, filter repository.RecordFilter) ([]*models.BatchRecord, int, error) {
	return s.repo.ListRecords(ctx, filter)
}

// GetLatestByLot retrieves the most recent analysis of a LOT
func (s *LotService) GetLatestByLot(ctx context.Context, lotNumber string) (*models.BatchRecord, error) {
	return s.repo.GetLatestByLot(ctx, lotNumber)
}

// ListLotNumbers returns the distinct LOT identifiers
func (s *LotService) ListLotNumbers(ctx context.Context) ([]string, error) {
	return s.repo.ListLotNumbers(ctx)
}

// CreateRecord stores a newly entered batch record
func (s *LotService) CreateRecord(ctx context.Context, rec *models.BatchRecord) error {
	return s.repo.CreateRecord(ctx, rec)
}

// UpdateRecord corrects an existing batch record
func (s *LotService) UpdateRecord(ctx context.Context, rec *models.BatchRecord) error {
	return s.repo.UpdateRecord(ctx, rec)
}
