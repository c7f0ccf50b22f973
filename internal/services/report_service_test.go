package services

import (
	"context"
	"testing"

	"liquor-analytics/internal/models"
	"liquor-analytics/internal/repository"
)

func newTestReportService(repo repository.BatchRepository) *ReportService {
	return NewReportService(repo, nil, nil, testLogger(), nil)
}

func TestReportService_ComparisonRequiresTwoLots(t *testing.T) {
	svc := newTestReportService(&memoryRepo{})

	tests := []struct {
		name       string
		focusLot   string
		lotNumbers []string
	}{
		{"focus only", "LOT-001", nil},
		{"focus duplicated", "LOT-001", []string{"LOT-001", "LOT-001"}},
		{"empty entries", "LOT-001", []string{"", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ComparisonReport(context.Background(), tt.focusLot, tt.lotNumbers)
			if err == nil {
				t.Fatal("ComparisonReport() should fail with fewer than two distinct LOTs")
			}
			if _, ok := err.(*models.ValidationError); !ok {
				t.Errorf("error type = %T, want *models.ValidationError", err)
			}
		})
	}
}

func TestReportService_ComparisonUnknownLotFails(t *testing.T) {
	repo := &memoryRepo{}
	rec := &models.BatchRecord{
		LotNumber:      "LOT-001",
		ProductName:    "Test Whiskey",
		AnalysisType:   models.AnalysisInitial,
		AlcoholContent: fptr(43.0),
	}
	if err := repo.CreateRecord(context.Background(), rec); err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}

	svc := newTestReportService(repo)

	_, err := svc.ComparisonReport(context.Background(), "LOT-001", []string{"LOT-404"})
	if err == nil {
		t.Fatal("ComparisonReport() should fail for an unknown LOT")
	}
	if _, ok := err.(*repository.NotFoundError); !ok {
		t.Errorf("error type = %T, want *repository.NotFoundError", err)
	}
}
