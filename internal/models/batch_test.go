package models

import (
	"testing"
)

func fptr(v float64) *float64 { return &v }

func TestParseAnalysisType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    AnalysisType
		wantErr bool
	}{
		{name: "initial", input: "initial", want: AnalysisInitial},
		{name: "aging", input: "aging", want: AnalysisAging},
		{name: "other product", input: "other-product", want: AnalysisOtherProduct},
		{name: "empty", input: "", wantErr: true},
		{name: "unknown", input: "final", wantErr: true},
		{name: "wrong case", input: "Initial", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAnalysisType(tt.input)

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseAnalysisType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseAnalysisType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBatchRecord_Validate(t *testing.T) {
	valid := func() BatchRecord {
		return BatchRecord{
			LotNumber:    "LOT-2024-001",
			ProductName:  "Single Malt",
			AnalysisType: AnalysisInitial,
			AromaScore:   fptr(75),
		}
	}

	tests := []struct {
		name      string
		mutate    func(*BatchRecord)
		wantErr   bool
		wantField string
	}{
		{
			name:   "valid record",
			mutate: func(r *BatchRecord) {},
		},
		{
			name:      "missing lot number",
			mutate:    func(r *BatchRecord) { r.LotNumber = "" },
			wantErr:   true,
			wantField: "lot_number",
		},
		{
			name:      "missing product name",
			mutate:    func(r *BatchRecord) { r.ProductName = "" },
			wantErr:   true,
			wantField: "product_name",
		},
		{
			name:      "invalid analysis type",
			mutate:    func(r *BatchRecord) { r.AnalysisType = "midway" },
			wantErr:   true,
			wantField: "analysis_type",
		},
		{
			name:      "score above range",
			mutate:    func(r *BatchRecord) { r.TasteScore = fptr(100.5) },
			wantErr:   true,
			wantField: "taste_score",
		},
		{
			name:      "score below range",
			mutate:    func(r *BatchRecord) { r.OverallScore = fptr(-1) },
			wantErr:   true,
			wantField: "overall_score",
		},
		{
			name:   "boundary scores are valid",
			mutate: func(r *BatchRecord) { r.TasteScore = fptr(0); r.FinishScore = fptr(100) },
		},
		{
			name:   "nil scores are valid",
			mutate: func(r *BatchRecord) { r.AromaScore = nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid()
			tt.mutate(&rec)

			err := rec.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.wantErr {
				verr, ok := err.(*ValidationError)
				if !ok {
					t.Fatalf("Validate() error type = %T, want *ValidationError", err)
				}
				if verr.Field != tt.wantField {
					t.Errorf("Validate() error field = %v, want %v", verr.Field, tt.wantField)
				}
			}
		})
	}
}

func TestBatchRecord_FeatureMap(t *testing.T) {
	rec := BatchRecord{
		LotNumber:      "LOT-2024-001",
		ProductName:    "Single Malt",
		AnalysisType:   AnalysisInitial,
		AlcoholContent: fptr(40.2),
		Acidity:        fptr(3.4),
		TanninLevel:    fptr(120),
	}

	m := rec.FeatureMap()

	if len(m) != 3 {
		t.Errorf("FeatureMap() has %d entries, want 3", len(m))
	}
	if m["alcohol_content"] != 40.2 {
		t.Errorf("FeatureMap()[alcohol_content] = %v, want 40.2", m["alcohol_content"])
	}
	if _, ok := m["sugar_content"]; ok {
		t.Error("FeatureMap() should omit unmeasured sugar_content")
	}
}

func TestFeatureNames_Order(t *testing.T) {
	// Trained models store coefficients positionally, so the schema
	// order must never change between calls.
	a := FeatureNames()
	b := FeatureNames()

	if len(a) != 6 {
		t.Fatalf("FeatureNames() has %d entries, want 6", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("FeatureNames() order unstable at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestIsTarget(t *testing.T) {
	for _, name := range TargetNames() {
		if !IsTarget(name) {
			t.Errorf("IsTarget(%q) = false, want true", name)
		}
	}
	if IsTarget("alcohol_content") {
		t.Error("IsTarget(alcohol_content) = true, want false")
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{
		Field:   "lot_number",
		Value:   "",
		Message: "lot_number is required",
	}

	if err.Error() != "lot_number is required" {
		t.Errorf("Error() = %v, want %v", err.Error(), "lot_number is required")
	}

	if err.IsTransient() {
		t.Error("ValidationError should not be transient")
	}
}
