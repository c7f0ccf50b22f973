package services

import (
	"context"
	"io"
	"testing"

	"liquor-analytics/internal/models"
	"liquor-analytics/internal/prediction"
	"liquor-analytics/internal/registry"
	"liquor-analytics/internal/repository"
	"liquor-analytics/pkg/logging"
)

func fptr(v float64) *float64 { return &v }

// memoryRepo is an in-memory BatchRepository for service tests
type memoryRepo struct {
	records []*models.BatchRecord
}

func (m *memoryRepo) CreateRecord(ctx context.Context, rec *models.BatchRecord) error {
	rec.ID = int64(len(m.records) + 1)
	m.records = append(m.records, rec)
	return nil
}

func (m *memoryRepo) UpdateRecord(ctx context.Context, rec *models.BatchRecord) error {
	for i, existing := range m.records {
		if existing.ID == rec.ID {
			m.records[i] = rec
			return nil
		}
	}
	return &repository.NotFoundError{Resource: "lot_record", ID: "?"}
}

func (m *memoryRepo) GetRecord(ctx context.Context, id int64) (*models.BatchRecord, error) {
	for _, rec := range m.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, &repository.NotFoundError{Resource: "lot_record", ID: "?"}
}

func (m *memoryRepo) GetLatestByLot(ctx context.Context, lotNumber string) (*models.BatchRecord, error) {
	var latest *models.BatchRecord
	for _, rec := range m.records {
		if rec.LotNumber == lotNumber {
			latest = rec
		}
	}
	if latest == nil {
		return nil, &repository.NotFoundError{Resource: "lot_record", ID: lotNumber}
	}
	return latest, nil
}

func (m *memoryRepo) ListRecords(ctx context.Context, filter repository.RecordFilter) ([]*models.BatchRecord, int, error) {
	return m.records, len(m.records), nil
}

func (m *memoryRepo) ListAllRecords(ctx context.Context) ([]*models.BatchRecord, error) {
	return m.records, nil
}

func (m *memoryRepo) ListLotNumbers(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, rec := range m.records {
		if !seen[rec.LotNumber] {
			seen[rec.LotNumber] = true
			out = append(out, rec.LotNumber)
		}
	}
	return out, nil
}

func (m *memoryRepo) HealthCheck(ctx context.Context) error { return nil }

func testLogger() *logging.StructuredLogger {
	logger := logging.NewStructuredLogger("test", logging.ErrorLevel)
	logger.SetOutput(io.Discard)
	return logger
}

func seedRepo(aromaScores []float64) *memoryRepo {
	repo := &memoryRepo{}
	for i, score := range aromaScores {
		f := float64(i)
		repo.records = append(repo.records, &models.BatchRecord{
			ID:                 int64(i + 1),
			LotNumber:          "LOT-TEST",
			ProductName:        "Single Malt",
			AnalysisType:       models.AnalysisInitial,
			AlcoholContent:     fptr(40 + f),
			Acidity:            fptr(3.0 + 0.1*f),
			SugarContent:       fptr(2.0 + 0.2*f),
			TanninLevel:        fptr(100 + 10*f),
			EsterConcentration: fptr(40 + 2*f),
			AldehydeLevel:      fptr(10 + f),
			AromaScore:         fptr(score),
		})
	}
	return repo
}

func newTestTrainingService(t *testing.T, repo repository.BatchRepository) (*TrainingService, *registry.FileRegistry) {
	t.Helper()
	logger := testLogger()

	reg, err := registry.New(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("registry.New() error = %v", err)
	}

	trainer := prediction.NewTrainer(logger, nil)
	return NewTrainingService(repo, trainer, reg, logger, nil), reg
}

func TestTrainingService_TrainPersistsArtifact(t *testing.T) {
	repo := seedRepo([]float64{40, 55, 60, 70, 65, 80})
	svc, reg := newTestTrainingService(t, repo)

	model, err := svc.Train(context.Background(), "aroma_score", models.AlgorithmRidge, prediction.DefaultRecordFilter())
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	loaded, err := reg.Load("aroma_score", models.AlgorithmRidge)
	if err != nil {
		t.Fatalf("Load() after training error = %v", err)
	}
	if loaded.ID != model.ID {
		t.Errorf("registry holds model %v, want %v", loaded.ID, model.ID)
	}

	statuses := svc.Status()
	if len(statuses) != 1 {
		t.Fatalf("Status() has %d runs, want 1", len(statuses))
	}
	if statuses[0].State != RunStateCompleted {
		t.Errorf("State = %v, want completed", statuses[0].State)
	}
	if statuses[0].Metrics == nil {
		t.Error("completed run should expose validation metrics")
	}
}

func TestTrainingService_TrainInsufficientData(t *testing.T) {
	repo := seedRepo([]float64{40, 55, 60})
	svc, reg := newTestTrainingService(t, repo)

	_, err := svc.Train(context.Background(), "aroma_score", models.AlgorithmRidge, prediction.DefaultRecordFilter())
	if err == nil {
		t.Fatal("Train() with 3 labeled records should fail")
	}
	if _, ok := err.(*prediction.InsufficientDataError); !ok {
		t.Errorf("error type = %T, want *prediction.InsufficientDataError", err)
	}

	// Nothing reaches the registry on failure.
	if _, err := reg.Load("aroma_score", models.AlgorithmRidge); err == nil {
		t.Error("failed run should not persist an artifact")
	}

	statuses := svc.Status()
	if len(statuses) != 1 || statuses[0].State != RunStateFailed {
		t.Errorf("Status() = %+v, want one failed run", statuses)
	}
	if statuses[0].Error == "" {
		t.Error("failed run should carry the error message")
	}
}

func TestTrainingService_TrainAllContinuesPastFailures(t *testing.T) {
	// Only aroma_score is labeled, so the other 3 targets fail and the
	// run must still produce the aroma model.
	repo := seedRepo([]float64{40, 55, 60, 70, 65, 80})
	svc, _ := newTestTrainingService(t, repo)

	result, err := svc.TrainAll(context.Background(), models.AlgorithmRandomForest, prediction.DefaultRecordFilter())
	if err != nil {
		t.Fatalf("TrainAll() error = %v", err)
	}

	if len(result.Models) != 1 {
		t.Fatalf("Models has %d entries, want 1", len(result.Models))
	}
	if result.Models[0].Target != "aroma_score" {
		t.Errorf("trained target = %v, want aroma_score", result.Models[0].Target)
	}
	if len(result.Errors) != 3 {
		t.Errorf("Errors has %d entries, want 3: %v", len(result.Errors), result.Errors)
	}
}

func TestTrainingService_RetrainOverwrites(t *testing.T) {
	repo := seedRepo([]float64{40, 55, 60, 70, 65, 80})
	svc, reg := newTestTrainingService(t, repo)

	first, err := svc.Train(context.Background(), "aroma_score", models.AlgorithmLasso, prediction.DefaultRecordFilter())
	if err != nil {
		t.Fatalf("first Train() error = %v", err)
	}
	second, err := svc.Train(context.Background(), "aroma_score", models.AlgorithmLasso, prediction.DefaultRecordFilter())
	if err != nil {
		t.Fatalf("second Train() error = %v", err)
	}

	loaded, err := reg.Load("aroma_score", models.AlgorithmLasso)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.ID != second.ID {
		t.Errorf("registry holds %v, want the second run %v", loaded.ID, second.ID)
	}
	if loaded.ID == first.ID {
		t.Error("retraining should replace the prior artifact")
	}
}
