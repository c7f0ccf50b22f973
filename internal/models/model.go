package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Algorithm identifies one of the supported regression algorithms.
// The set is closed; each variant differs only in fitting procedure
// and fixed hyperparameters.
type Algorithm string

const (
	AlgorithmRandomForest     Algorithm = "random-forest"
	AlgorithmGradientBoosting Algorithm = "gradient-boosting"
	AlgorithmLinear           Algorithm = "linear"
	AlgorithmRidge            Algorithm = "ridge"
	AlgorithmLasso            Algorithm = "lasso"
)

// Algorithms returns all supported algorithm identifiers
func Algorithms() []Algorithm {
	return []Algorithm{
		AlgorithmRandomForest,
		AlgorithmGradientBoosting,
		AlgorithmLinear,
		AlgorithmRidge,
		AlgorithmLasso,
	}
}

// ParseAlgorithm validates and converts a raw string to an Algorithm
func ParseAlgorithm(s string) (Algorithm, error) {
	for _, a := range Algorithms() {
		if Algorithm(s) == a {
			return a, nil
		}
	}
	return "", &ValidationError{
		Field:   "algorithm",
		Value:   s,
		Message: fmt.Sprintf("unknown algorithm %q, expected one of: random-forest, gradient-boosting, linear, ridge, lasso", s),
	}
}

// TreeBased reports whether the algorithm produces feature importances
func (a Algorithm) TreeBased() bool {
	return a == AlgorithmRandomForest || a == AlgorithmGradientBoosting
}

// ValidationMetrics holds fit quality measured on the holdout partition
type ValidationMetrics struct {
	R2   float64 `json:"r2"`
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
}

// FeatureScaler holds per-feature standardization statistics computed
// from the training partition. Applied to inputs at prediction time.
type FeatureScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Transform standardizes a feature row in place
func (s *FeatureScaler) Transform(row []float64) {
	for i := range row {
		row[i] = (row[i] - s.Mean[i]) / s.Std[i]
	}
}

// TrainedModel is a frozen, self-describing training artifact.
// Owned by the model registry; readers never mutate it.
type TrainedModel struct {
	ID           string             `json:"id"`
	Target       string             `json:"target"`
	Algorithm    Algorithm          `json:"algorithm"`
	FeatureNames []string           `json:"feature_names"`
	TrainingRows int                `json:"training_rows"`
	Metrics      ValidationMetrics  `json:"metrics"`
	Importance   map[string]float64 `json:"importance,omitempty"`
	Warnings     []string           `json:"warnings,omitempty"`
	Scaler       FeatureScaler      `json:"scaler"`
	Params       json.RawMessage    `json:"params"`
	CreatedAt    time.Time          `json:"created_at"`
}

// PredictionResult is the ephemeral output of a single prediction request
type PredictionResult struct {
	ID             string             `json:"id"`
	Target         string             `json:"target"`
	Value          float64            `json:"value"`
	Algorithm      Algorithm          `json:"algorithm"`
	ModelID        string             `json:"model_id"`
	ModelCreatedAt time.Time          `json:"model_created_at"`
	Importance     map[string]float64 `json:"importance,omitempty"`
	GeneratedAt    time.Time          `json:"generated_at"`
}
