package prediction

import (
	"context"
	"time"

	"github.com/google/uuid"

	"liquor-analytics/internal/models"
	"liquor-analytics/pkg/logging"
)

// ModelSource supplies trained artifacts, typically the model registry.
// The predictor only reads models, never mutates or stores them.
type ModelSource interface {
	Load(target string, algorithm models.Algorithm) (*models.TrainedModel, error)
	Latest(target string) (*models.TrainedModel, error)
}

// Selector names either a specific algorithm or the most recent model
// for a target regardless of algorithm
type Selector struct {
	Algorithm models.Algorithm
	Latest    bool
}

// ParseSelector converts the wire form ("latest" or an algorithm id)
func ParseSelector(s string) (Selector, error) {
	if s == "" || s == "latest" {
		return Selector{Latest: true}, nil
	}
	alg, err := models.ParseAlgorithm(s)
	if err != nil {
		return Selector{}, err
	}
	return Selector{Algorithm: alg}, nil
}

// Predictor applies trained models to feature vectors
type Predictor struct {
	source ModelSource
	logger *logging.StructuredLogger
}

// NewPredictor creates a predictor reading from the given model source
func NewPredictor(source ModelSource, logger *logging.StructuredLogger) *Predictor {
	return &Predictor{
		source: source,
		logger: logger,
	}
}

// Predict produces a point estimate for the target from the feature
// vector. Every feature the model was trained on must be present;
// missing features fail with SchemaMismatchError and are never imputed,
// so a live prediction cannot be served from fabricated inputs. A failed
// prediction is reported immediately, never retried.
func (p *Predictor) Predict(ctx context.Context, target string, features map[string]float64, sel Selector) (*models.PredictionResult, error) {
	var (
		model *models.TrainedModel
		err   error
	)
	if sel.Latest {
		model, err = p.source.Latest(target)
	} else {
		model, err = p.source.Load(target, sel.Algorithm)
	}
	if err != nil {
		return nil, err
	}

	var missing []string
	row := make([]float64, len(model.FeatureNames))
	for i, name := range model.FeatureNames {
		v, ok := features[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		row[i] = v
	}
	if len(missing) > 0 {
		return nil, &SchemaMismatchError{Target: target, Missing: missing}
	}

	model.Scaler.Transform(row)

	reg, err := decodeParams(model.Algorithm, model.Params)
	if err != nil {
		return nil, err
	}

	result := &models.PredictionResult{
		ID:             uuid.New().String(),
		Target:         target,
		Value:          reg.predictRow(row),
		Algorithm:      model.Algorithm,
		ModelID:        model.ID,
		ModelCreatedAt: model.CreatedAt,
		Importance:     model.Importance,
		GeneratedAt:    time.Now().UTC(),
	}

	p.logger.Debug(ctx, "[PREDICT] Prediction served", logging.Fields{
		"target":    target,
		"algorithm": string(model.Algorithm),
		"model_id":  model.ID,
		"value":     result.Value,
	})

	return result, nil
}
