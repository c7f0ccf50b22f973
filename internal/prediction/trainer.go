package prediction

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"liquor-analytics/internal/models"
	"liquor-analytics/pkg/logging"
	"liquor-analytics/pkg/metrics"
)

const (
	// DefaultHoldoutFraction of the dataset is withheld for validation
	DefaultHoldoutFraction = 0.2

	// splitSeed fixes the shuffle so re-training an unchanged dataset
	// reproduces the validation metrics exactly
	splitSeed = 42
)

// Trainer fits regression models against extracted datasets
type Trainer struct {
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	holdout float64
}

// NewTrainer creates a trainer with the default holdout fraction
func NewTrainer(logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *Trainer {
	return &Trainer{
		logger:  logger,
		metrics: metricsCollector,
		holdout: DefaultHoldoutFraction,
	}
}

// Train fits the selected algorithm to the dataset and measures fit
// quality on a deterministic holdout partition. The dataset must already
// be imputed; non-finite values fail the run. Persistence of the
// returned artifact is the registry's job, not the trainer's.
func (t *Trainer) Train(ctx context.Context, algorithm models.Algorithm, ds *Dataset) (*models.TrainedModel, error) {
	startTime := time.Now()

	if ds.Len() < MinTrainingRecords {
		return nil, &InsufficientDataError{
			Target:   ds.Target,
			Found:    ds.Len(),
			Required: MinTrainingRecords,
		}
	}

	if err := checkFinite(ds); err != nil {
		t.recordOutcome(ds.Target, algorithm, "failed")
		return nil, err
	}

	trainIdx, testIdx, err := t.split(ds)
	if err != nil {
		t.recordOutcome(ds.Target, algorithm, "failed")
		return nil, err
	}

	t.logger.Info(ctx, "[TRAIN_START] Starting model training", logging.Fields{
		"target":     ds.Target,
		"algorithm":  string(algorithm),
		"total_rows": ds.Len(),
		"train_rows": len(trainIdx),
		"test_rows":  len(testIdx),
	})

	scaler := fitScaler(ds.Rows, trainIdx)

	trainRows := scaledRows(ds.Rows, trainIdx, &scaler)
	trainLabels := selectLabels(ds.Labels, trainIdx)

	reg, err := newRegressor(algorithm)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(splitSeed))
	if err := reg.fit(trainRows, trainLabels, rng); err != nil {
		t.recordOutcome(ds.Target, algorithm, "failed")
		return nil, &TrainingError{Target: ds.Target, Algorithm: algorithm, Message: err.Error()}
	}

	testRows := scaledRows(ds.Rows, testIdx, &scaler)
	testLabels := selectLabels(ds.Labels, testIdx)
	validation := validate(reg, testRows, testLabels)

	params, err := encodeParams(reg)
	if err != nil {
		t.recordOutcome(ds.Target, algorithm, "failed")
		return nil, &TrainingError{Target: ds.Target, Algorithm: algorithm, Message: err.Error()}
	}

	model := &models.TrainedModel{
		ID:           uuid.New().String(),
		Target:       ds.Target,
		Algorithm:    algorithm,
		FeatureNames: append([]string(nil), ds.FeatureNames...),
		TrainingRows: ds.Len(),
		Metrics:      validation,
		Warnings:     append([]string(nil), ds.Warnings...),
		Scaler:       scaler,
		Params:       params,
		CreatedAt:    time.Now().UTC(),
	}

	if imp := reg.importance(); imp != nil {
		model.Importance = make(map[string]float64, len(imp))
		for i, name := range ds.FeatureNames {
			model.Importance[name] = imp[i]
		}
	}

	duration := time.Since(startTime)
	if t.metrics != nil {
		t.metrics.TrainingDuration.Observe(duration.Seconds())
		t.metrics.TrainingSetSize.Observe(float64(ds.Len()))
		t.metrics.RecordModelMetrics(ds.Target, string(algorithm), validation.R2, validation.MAE)
	}
	t.recordOutcome(ds.Target, algorithm, "success")

	t.logger.Info(ctx, "[TRAIN_COMPLETE] Model training completed", logging.Fields{
		"target":      ds.Target,
		"algorithm":   string(algorithm),
		"model_id":    model.ID,
		"r2":          validation.R2,
		"mae":         validation.MAE,
		"rmse":        validation.RMSE,
		"duration_ms": duration.Milliseconds(),
		"warnings":    len(model.Warnings),
	})

	return model, nil
}

func (t *Trainer) recordOutcome(target string, algorithm models.Algorithm, status string) {
	if t.metrics != nil {
		t.metrics.RecordTrainingRun(target, string(algorithm), status)
	}
}

// split shuffles row indices with the fixed seed and carves off the
// holdout partition. Both partitions must be non-empty.
func (t *Trainer) split(ds *Dataset) (trainIdx, testIdx []int, err error) {
	n := ds.Len()
	nTest := int(math.Ceil(float64(n) * t.holdout))

	if nTest == 0 || nTest >= n {
		return nil, nil, &TrainingError{
			Target:  ds.Target,
			Message: "holdout partition would be empty or consume the whole dataset",
		}
	}

	perm := rand.New(rand.NewSource(splitSeed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

func checkFinite(ds *Dataset) error {
	for i, row := range ds.Rows {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &TrainingError{
					Target:  ds.Target,
					Message: "dataset contains non-finite feature values after imputation (lot " + ds.LotNumbers[i] + ")",
				}
			}
		}
		if math.IsNaN(ds.Labels[i]) || math.IsInf(ds.Labels[i], 0) {
			return &TrainingError{
				Target:  ds.Target,
				Message: "dataset contains non-finite label values (lot " + ds.LotNumbers[i] + ")",
			}
		}
	}
	return nil
}

// fitScaler computes standardization statistics from the training
// partition only, so holdout rows never leak into the fit
func fitScaler(rows [][]float64, trainIdx []int) models.FeatureScaler {
	p := len(rows[0])
	n := float64(len(trainIdx))

	mean := make([]float64, p)
	for _, i := range trainIdx {
		for j, v := range rows[i] {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= n
	}

	std := make([]float64, p)
	for _, i := range trainIdx {
		for j, v := range rows[i] {
			d := v - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		if std[j] == 0 {
			std[j] = 1
		}
	}

	return models.FeatureScaler{Mean: mean, Std: std}
}

func scaledRows(rows [][]float64, idx []int, scaler *models.FeatureScaler) [][]float64 {
	out := make([][]float64, len(idx))
	for k, i := range idx {
		row := append([]float64(nil), rows[i]...)
		scaler.Transform(row)
		out[k] = row
	}
	return out
}

func selectLabels(labels []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for k, i := range idx {
		out[k] = labels[i]
	}
	return out
}

// validate measures prediction quality on the holdout partition. With a
// constant holdout, the coefficient of determination is reported as 0.
func validate(reg regressor, rows [][]float64, labels []float64) models.ValidationMetrics {
	n := float64(len(labels))

	mean := 0.0
	for _, y := range labels {
		mean += y
	}
	mean /= n

	ssRes, ssTot, absSum := 0.0, 0.0, 0.0
	for i, row := range rows {
		pred := reg.predictRow(row)
		d := labels[i] - pred
		ssRes += d * d
		absSum += math.Abs(d)
		ssTot += (labels[i] - mean) * (labels[i] - mean)
	}

	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}

	return models.ValidationMetrics{
		R2:   r2,
		MAE:  absSum / n,
		RMSE: math.Sqrt(ssRes / n),
	}
}
