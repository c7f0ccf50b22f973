package prediction

import (
	"math"
	"testing"

	"liquor-analytics/internal/models"
)

func nanDataset(rows [][]float64, labels []float64) *Dataset {
	lots := make([]string, len(rows))
	for i := range lots {
		lots[i] = "LOT-TEST"
	}
	return &Dataset{
		Target:       "aroma_score",
		FeatureNames: models.FeatureNames(),
		Rows:         rows,
		Labels:       labels,
		LotNumbers:   lots,
	}
}

func TestImpute_FillsColumnMean(t *testing.T) {
	nan := math.NaN()
	ds := nanDataset([][]float64{
		{40, 3.0, 2.0, 100, 40, 10},
		{42, nan, 2.0, 100, 40, 10},
		{44, 4.0, 2.0, 100, 40, 10},
	}, []float64{60, 65, 70})

	Impute(ds)

	// Mean of the measured acidity values, 3.0 and 4.0.
	if got := ds.Rows[1][1]; got != 3.5 {
		t.Errorf("imputed acidity = %v, want 3.5", got)
	}
	if len(ds.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", ds.Warnings)
	}
}

func TestImpute_AllMissingColumnFilledWithZero(t *testing.T) {
	nan := math.NaN()
	ds := nanDataset([][]float64{
		{40, 3.0, nan, 100, 40, 10},
		{42, 3.2, nan, 100, 40, 10},
	}, []float64{60, 65})

	Impute(ds)

	for i, row := range ds.Rows {
		if row[2] != 0 {
			t.Errorf("row %d sugar_content = %v, want 0", i, row[2])
		}
	}
	if len(ds.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want exactly one", ds.Warnings)
	}
}

func TestImpute_CompleteDatasetUnchanged(t *testing.T) {
	rows := [][]float64{
		{40, 3.0, 2.0, 100, 40, 10},
		{42, 3.2, 2.1, 110, 42, 11},
	}
	want := [][]float64{
		{40, 3.0, 2.0, 100, 40, 10},
		{42, 3.2, 2.1, 110, 42, 11},
	}
	ds := nanDataset(rows, []float64{60, 65})

	Impute(ds)

	for i := range want {
		for j := range want[i] {
			if ds.Rows[i][j] != want[i][j] {
				t.Errorf("Rows[%d][%d] = %v, want %v", i, j, ds.Rows[i][j], want[i][j])
			}
		}
	}
}

func TestImpute_Idempotent(t *testing.T) {
	nan := math.NaN()
	ds := nanDataset([][]float64{
		{40, nan, 2.0, 100, 40, 10},
		{42, 3.0, 2.0, 100, 40, 10},
		{44, 5.0, 2.0, 100, 40, 10},
	}, []float64{60, 65, 70})

	Impute(ds)
	after := make([]float64, len(ds.Rows))
	for i, row := range ds.Rows {
		after[i] = row[1]
	}

	Impute(ds)
	for i, row := range ds.Rows {
		if row[1] != after[i] {
			t.Errorf("second Impute changed row %d: %v, want %v", i, row[1], after[i])
		}
	}
}
