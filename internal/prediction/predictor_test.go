package prediction

import (
	"context"
	"errors"
	"testing"

	"liquor-analytics/internal/models"
)

// stubSource serves a single pre-trained model
type stubSource struct {
	model *models.TrainedModel
}

func (s *stubSource) Load(target string, algorithm models.Algorithm) (*models.TrainedModel, error) {
	if s.model == nil || s.model.Target != target || s.model.Algorithm != algorithm {
		return nil, errors.New("model not found")
	}
	return s.model, nil
}

func (s *stubSource) Latest(target string) (*models.TrainedModel, error) {
	if s.model == nil || s.model.Target != target {
		return nil, errors.New("model not found")
	}
	return s.model, nil
}

func trainTestModel(t *testing.T, algorithm models.Algorithm) *models.TrainedModel {
	t.Helper()
	trainer := NewTrainer(testLogger(), nil)
	model, err := trainer.Train(context.Background(), algorithm, trainingDataset())
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	return model
}

func fullFeatures() map[string]float64 {
	return map[string]float64{
		"alcohol_content":     42.5,
		"acidity":             3.25,
		"sugar_content":       2.5,
		"tannin_level":        125,
		"ester_concentration": 45,
		"aldehyde_level":      12.5,
	}
}

func TestPredictor_Predict(t *testing.T) {
	model := trainTestModel(t, models.AlgorithmRidge)
	predictor := NewPredictor(&stubSource{model: model}, testLogger())

	result, err := predictor.Predict(context.Background(), "aroma_score", fullFeatures(), Selector{Algorithm: models.AlgorithmRidge})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	if result.Target != "aroma_score" {
		t.Errorf("Target = %v, want aroma_score", result.Target)
	}
	if result.ModelID != model.ID {
		t.Errorf("ModelID = %v, want %v", result.ModelID, model.ID)
	}

	// Features near the middle of the training data should predict
	// within the observed label range, 40 to 80.
	if result.Value < 40 || result.Value > 80 {
		t.Errorf("Value = %v, want within [40, 80]", result.Value)
	}
}

func TestPredictor_LatestSelector(t *testing.T) {
	model := trainTestModel(t, models.AlgorithmRandomForest)
	predictor := NewPredictor(&stubSource{model: model}, testLogger())

	result, err := predictor.Predict(context.Background(), "aroma_score", fullFeatures(), Selector{Latest: true})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if result.Algorithm != models.AlgorithmRandomForest {
		t.Errorf("Algorithm = %v, want random-forest", result.Algorithm)
	}
	if len(result.Importance) != 6 {
		t.Errorf("Importance has %d entries, want 6 for a forest model", len(result.Importance))
	}
}

func TestPredictor_MissingFeaturesNeverImputed(t *testing.T) {
	model := trainTestModel(t, models.AlgorithmRidge)
	predictor := NewPredictor(&stubSource{model: model}, testLogger())

	features := fullFeatures()
	delete(features, "tannin_level")
	delete(features, "aldehyde_level")

	_, err := predictor.Predict(context.Background(), "aroma_score", features, Selector{Latest: true})
	if err == nil {
		t.Fatal("Predict() with missing features should fail")
	}

	mismatch, ok := err.(*SchemaMismatchError)
	if !ok {
		t.Fatalf("error type = %T, want *SchemaMismatchError", err)
	}
	if len(mismatch.Missing) != 2 {
		t.Errorf("Missing = %v, want the 2 absent features", mismatch.Missing)
	}
}

func TestPredictor_ModelLookupFailurePropagates(t *testing.T) {
	predictor := NewPredictor(&stubSource{}, testLogger())

	_, err := predictor.Predict(context.Background(), "aroma_score", fullFeatures(), Selector{Latest: true})
	if err == nil {
		t.Fatal("Predict() without a registered model should fail")
	}
}

func TestParseSelector(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Selector
		wantErr bool
	}{
		{name: "empty means latest", input: "", want: Selector{Latest: true}},
		{name: "explicit latest", input: "latest", want: Selector{Latest: true}},
		{name: "named algorithm", input: "ridge", want: Selector{Algorithm: models.AlgorithmRidge}},
		{name: "unknown algorithm", input: "xgboost", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelector(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseSelector(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseSelector(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}
