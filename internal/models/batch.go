package models

import (
	"fmt"
	"time"
)

// AnalysisType classifies when in a LOT's lifecycle an analysis was taken
type AnalysisType string

const (
	AnalysisInitial      AnalysisType = "initial"
	AnalysisAging        AnalysisType = "aging"
	AnalysisOtherProduct AnalysisType = "other-product"
)

// ParseAnalysisType validates and converts a raw string to an AnalysisType
func ParseAnalysisType(s string) (AnalysisType, error) {
	switch AnalysisType(s) {
	case AnalysisInitial, AnalysisAging, AnalysisOtherProduct:
		return AnalysisType(s), nil
	}
	return "", &ValidationError{
		Field:   "analysis_type",
		Value:   s,
		Message: fmt.Sprintf("unknown analysis type %q, expected one of: initial, aging, other-product", s),
	}
}

// FeatureNames returns the fixed, ordered chemical feature schema.
// Every dataset and trained model uses exactly this order.
func FeatureNames() []string {
	return []string{
		"alcohol_content",
		"acidity",
		"sugar_content",
		"tannin_level",
		"ester_concentration",
		"aldehyde_level",
	}
}

// TargetNames returns the sensory score targets available for training
func TargetNames() []string {
	return []string{
		"aroma_score",
		"taste_score",
		"finish_score",
		"overall_score",
	}
}

// IsTarget reports whether name is a known sensory target
func IsTarget(name string) bool {
	for _, t := range TargetNames() {
		if t == name {
			return true
		}
	}
	return false
}

// BatchRecord represents one chemical analysis of a production LOT.
// A LOT may have multiple records over time (initial inspection, aging checks).
// NULL measurements are represented as nil pointers.
type BatchRecord struct {
	ID           int64        `json:"id" db:"id"`
	LotNumber    string       `json:"lot_number" db:"lot_number"`
	ProductName  string       `json:"product_name" db:"product_name"`
	AnalysisType AnalysisType `json:"analysis_type" db:"analysis_type"`

	// Chemical composition
	AlcoholContent     *float64 `json:"alcohol_content,omitempty" db:"alcohol_content"`         // ABV %
	Acidity            *float64 `json:"acidity,omitempty" db:"acidity"`                         // pH
	SugarContent       *float64 `json:"sugar_content,omitempty" db:"sugar_content"`             // g/L
	TanninLevel        *float64 `json:"tannin_level,omitempty" db:"tannin_level"`               // mg/L
	EsterConcentration *float64 `json:"ester_concentration,omitempty" db:"ester_concentration"` // mg/L
	AldehydeLevel      *float64 `json:"aldehyde_level,omitempty" db:"aldehyde_level"`           // mg/L

	// Sensory scores, 0-100, the regression targets
	AromaScore   *float64 `json:"aroma_score,omitempty" db:"aroma_score"`
	TasteScore   *float64 `json:"taste_score,omitempty" db:"taste_score"`
	FinishScore  *float64 `json:"finish_score,omitempty" db:"finish_score"`
	OverallScore *float64 `json:"overall_score,omitempty" db:"overall_score"`

	ProductionDate *time.Time `json:"production_date,omitempty" db:"production_date"`
	EntryDate      time.Time  `json:"entry_date" db:"entry_date"`
	Notes          *string    `json:"notes,omitempty" db:"notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Feature returns the named chemical feature, nil when not measured
func (r *BatchRecord) Feature(name string) *float64 {
	switch name {
	case "alcohol_content":
		return r.AlcoholContent
	case "acidity":
		return r.Acidity
	case "sugar_content":
		return r.SugarContent
	case "tannin_level":
		return r.TanninLevel
	case "ester_concentration":
		return r.EsterConcentration
	case "aldehyde_level":
		return r.AldehydeLevel
	}
	return nil
}

// Target returns the named sensory score, nil when not rated
func (r *BatchRecord) Target(name string) *float64 {
	switch name {
	case "aroma_score":
		return r.AromaScore
	case "taste_score":
		return r.TasteScore
	case "finish_score":
		return r.FinishScore
	case "overall_score":
		return r.OverallScore
	}
	return nil
}

// FeatureMap returns the record's measured features as a prediction input
// vector. Unmeasured features are omitted, never substituted.
func (r *BatchRecord) FeatureMap() map[string]float64 {
	m := make(map[string]float64)
	for _, name := range FeatureNames() {
		if v := r.Feature(name); v != nil {
			m[name] = *v
		}
	}
	return m
}

// Validate checks record fields before persistence
func (r *BatchRecord) Validate() error {
	if r.LotNumber == "" {
		return &ValidationError{
			Field:   "lot_number",
			Value:   "",
			Message: "lot_number is required",
		}
	}

	if r.ProductName == "" {
		return &ValidationError{
			Field:   "product_name",
			Value:   "",
			Message: "product_name is required",
		}
	}

	if _, err := ParseAnalysisType(string(r.AnalysisType)); err != nil {
		return err
	}

	for _, name := range TargetNames() {
		score := r.Target(name)
		if score != nil && (*score < 0 || *score > 100) {
			return &ValidationError{
				Field:   name,
				Value:   fmt.Sprintf("%g", *score),
				Message: fmt.Sprintf("%s must be between 0 and 100", name),
			}
		}
	}

	return nil
}

// ValidationError represents a data validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}
