package prediction

import (
	"math"

	"liquor-analytics/internal/models"
)

// MinTrainingRecords is the smallest labeled dataset a training run accepts
const MinTrainingRecords = 5

// RecordFilter selects which batch records are eligible for a training
// run. An empty analysis-type set admits every record.
type RecordFilter struct {
	AnalysisTypes []models.AnalysisType
}

// DefaultRecordFilter admits initial-inspection and aging analyses;
// other-product measurements are excluded from training by default.
func DefaultRecordFilter() RecordFilter {
	return RecordFilter{
		AnalysisTypes: []models.AnalysisType{
			models.AnalysisInitial,
			models.AnalysisAging,
		},
	}
}

// Admits reports whether records of the given analysis type are eligible
func (f RecordFilter) Admits(t models.AnalysisType) bool {
	if len(f.AnalysisTypes) == 0 {
		return true
	}
	for _, a := range f.AnalysisTypes {
		if a == t {
			return true
		}
	}
	return false
}

// Dataset is the rectangular training view derived from batch records.
// Ephemeral: rebuilt for every training run, never persisted. Missing
// feature values are NaN until the imputation stage runs.
type Dataset struct {
	Target       string
	FeatureNames []string
	Rows         [][]float64
	Labels       []float64
	LotNumbers   []string
	Warnings     []string
}

// Len returns the number of labeled records in the dataset
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// BuildDataset projects batch records onto the fixed feature schema,
// keeping only records the filter admits that carry a non-null value
// for the requested target. Pure transformation, no side effects.
func BuildDataset(records []*models.BatchRecord, target string, filter RecordFilter) (*Dataset, error) {
	if !models.IsTarget(target) {
		return nil, &models.ValidationError{
			Field:   "target",
			Value:   target,
			Message: "unknown target: " + target,
		}
	}

	featureNames := models.FeatureNames()
	ds := &Dataset{
		Target:       target,
		FeatureNames: featureNames,
	}

	for _, rec := range records {
		if !filter.Admits(rec.AnalysisType) {
			continue
		}

		label := rec.Target(target)
		if label == nil {
			continue
		}

		row := make([]float64, len(featureNames))
		for i, name := range featureNames {
			if v := rec.Feature(name); v != nil {
				row[i] = *v
			} else {
				row[i] = math.NaN()
			}
		}

		ds.Rows = append(ds.Rows, row)
		ds.Labels = append(ds.Labels, *label)
		ds.LotNumbers = append(ds.LotNumbers, rec.LotNumber)
	}

	if ds.Len() < MinTrainingRecords {
		return nil, &InsufficientDataError{
			Target:   target,
			Found:    ds.Len(),
			Required: MinTrainingRecords,
		}
	}

	return ds, nil
}
