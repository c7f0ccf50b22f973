package prediction

import (
	"fmt"
	"strings"

	"liquor-analytics/internal/models"
)

// InsufficientDataError indicates too few labeled records to train.
// Recoverable: the operator should enter more scored records.
type InsufficientDataError struct {
	Target   string
	Found    int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for target %s: found %d labeled records, need at least %d",
		e.Target, e.Found, e.Required)
}

// IsTransient returns false; the condition persists until more data is entered
func (e *InsufficientDataError) IsTransient() bool {
	return false
}

// TrainingError indicates a numerical failure during model fitting.
// Recoverable: the operator should inspect data quality.
type TrainingError struct {
	Target    string
	Algorithm models.Algorithm
	Message   string
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("training %s/%s failed: %s", e.Target, e.Algorithm, e.Message)
}

// IsTransient returns false as training errors reflect the dataset, not the run
func (e *TrainingError) IsTransient() bool {
	return false
}

// SchemaMismatchError indicates a prediction input missing features the
// model requires. Inputs are never imputed at prediction time.
type SchemaMismatchError struct {
	Target  string
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("feature vector for target %s is missing required features: %s",
		e.Target, strings.Join(e.Missing, ", "))
}

// IsTransient returns false; the caller must supply a complete input
func (e *SchemaMismatchError) IsTransient() bool {
	return false
}
