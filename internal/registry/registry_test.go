package registry

import (
	"encoding/json"
	"io"
	"reflect"
	"testing"
	"time"

	"liquor-analytics/internal/models"
	"liquor-analytics/pkg/logging"
)

func testRegistry(t *testing.T) *FileRegistry {
	t.Helper()
	logger := logging.NewStructuredLogger("test", logging.ErrorLevel)
	logger.SetOutput(io.Discard)

	reg, err := New(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return reg
}

func testModel(id, target string, algorithm models.Algorithm, createdAt time.Time) *models.TrainedModel {
	return &models.TrainedModel{
		ID:           id,
		Target:       target,
		Algorithm:    algorithm,
		FeatureNames: models.FeatureNames(),
		TrainingRows: 12,
		Metrics:      models.ValidationMetrics{R2: 0.8, MAE: 2.5, RMSE: 3.1},
		Scaler: models.FeatureScaler{
			Mean: []float64{40, 3, 2, 100, 40, 10},
			Std:  []float64{1, 1, 1, 1, 1, 1},
		},
		Params:    json.RawMessage(`{"intercept":60,"coefficients":[1,0,0,0,0,0]}`),
		CreatedAt: createdAt,
	}
}

func TestFileRegistry_SaveLoadRoundtrip(t *testing.T) {
	reg := testRegistry(t)

	saved := testModel("model-1", "aroma_score", models.AlgorithmRidge, time.Now().UTC())
	if err := reg.Save(saved); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := reg.Load("aroma_score", models.AlgorithmRidge)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.ID != saved.ID {
		t.Errorf("ID = %v, want %v", loaded.ID, saved.ID)
	}
	if loaded.Metrics != saved.Metrics {
		t.Errorf("Metrics = %+v, want %+v", loaded.Metrics, saved.Metrics)
	}
	// Save writes the artifact indented, which reformats the embedded
	// raw params, so compare the decoded values rather than the bytes.
	var gotParams, wantParams map[string]interface{}
	if err := json.Unmarshal(loaded.Params, &gotParams); err != nil {
		t.Fatalf("Unmarshal(loaded.Params) error = %v", err)
	}
	if err := json.Unmarshal(saved.Params, &wantParams); err != nil {
		t.Fatalf("Unmarshal(saved.Params) error = %v", err)
	}
	if !reflect.DeepEqual(gotParams, wantParams) {
		t.Errorf("Params = %s, want %s", loaded.Params, saved.Params)
	}
}

func TestFileRegistry_LoadMissingModel(t *testing.T) {
	reg := testRegistry(t)

	_, err := reg.Load("aroma_score", models.AlgorithmLinear)
	if err == nil {
		t.Fatal("Load() of an absent key should fail")
	}

	notFound, ok := err.(*NotFoundError)
	if !ok {
		t.Fatalf("error type = %T, want *NotFoundError", err)
	}
	if notFound.Target != "aroma_score" || notFound.Algorithm != models.AlgorithmLinear {
		t.Errorf("NotFoundError = %+v, want aroma_score/linear", notFound)
	}
	if notFound.IsTransient() {
		t.Error("NotFoundError should not be transient")
	}
}

func TestFileRegistry_SaveOverwritesSameKey(t *testing.T) {
	reg := testRegistry(t)

	first := testModel("model-1", "taste_score", models.AlgorithmRandomForest, time.Now().UTC())
	second := testModel("model-2", "taste_score", models.AlgorithmRandomForest, time.Now().UTC().Add(time.Minute))

	if err := reg.Save(first); err != nil {
		t.Fatalf("Save(first) error = %v", err)
	}
	if err := reg.Save(second); err != nil {
		t.Fatalf("Save(second) error = %v", err)
	}

	loaded, err := reg.Load("taste_score", models.AlgorithmRandomForest)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.ID != "model-2" {
		t.Errorf("ID = %v, want model-2 (last write wins)", loaded.ID)
	}

	all, err := reg.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("List() has %d artifacts, want 1 after overwrite", len(all))
	}
}

func TestFileRegistry_DistinctKeysDoNotCollide(t *testing.T) {
	reg := testRegistry(t)

	now := time.Now().UTC()
	saves := []*models.TrainedModel{
		testModel("m1", "aroma_score", models.AlgorithmLinear, now),
		testModel("m2", "aroma_score", models.AlgorithmRidge, now),
		testModel("m3", "taste_score", models.AlgorithmLinear, now),
	}
	for _, m := range saves {
		if err := reg.Save(m); err != nil {
			t.Fatalf("Save(%s) error = %v", m.ID, err)
		}
	}

	all, err := reg.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("List() has %d artifacts, want 3", len(all))
	}

	loaded, err := reg.Load("aroma_score", models.AlgorithmLinear)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.ID != "m1" {
		t.Errorf("ID = %v, want m1", loaded.ID)
	}
}

func TestFileRegistry_Latest(t *testing.T) {
	reg := testRegistry(t)

	base := time.Now().UTC()
	if err := reg.Save(testModel("old", "overall_score", models.AlgorithmLinear, base)); err != nil {
		t.Fatalf("Save(old) error = %v", err)
	}
	if err := reg.Save(testModel("new", "overall_score", models.AlgorithmRandomForest, base.Add(time.Hour))); err != nil {
		t.Fatalf("Save(new) error = %v", err)
	}

	latest, err := reg.Latest("overall_score")
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest.ID != "new" {
		t.Errorf("Latest() ID = %v, want new", latest.ID)
	}

	if _, err := reg.Latest("finish_score"); err == nil {
		t.Error("Latest() for an untrained target should fail")
	}
}
