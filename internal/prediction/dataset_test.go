package prediction

import (
	"math"
	"testing"

	"liquor-analytics/internal/models"
)

func fptr(v float64) *float64 { return &v }

func labeledRecord(lot string, analysisType models.AnalysisType, aroma float64) *models.BatchRecord {
	return &models.BatchRecord{
		LotNumber:          lot,
		ProductName:        "Single Malt",
		AnalysisType:       analysisType,
		AlcoholContent:     fptr(40),
		Acidity:            fptr(3.5),
		SugarContent:       fptr(2.1),
		TanninLevel:        fptr(150),
		EsterConcentration: fptr(45),
		AldehydeLevel:      fptr(12),
		AromaScore:         fptr(aroma),
	}
}

func TestBuildDataset_InsufficientData(t *testing.T) {
	records := []*models.BatchRecord{
		labeledRecord("LOT-001", models.AnalysisInitial, 70),
		labeledRecord("LOT-002", models.AnalysisInitial, 72),
		labeledRecord("LOT-003", models.AnalysisAging, 68),
	}

	_, err := BuildDataset(records, "aroma_score", DefaultRecordFilter())
	if err == nil {
		t.Fatal("BuildDataset() with 3 labeled records should fail")
	}

	insufficient, ok := err.(*InsufficientDataError)
	if !ok {
		t.Fatalf("BuildDataset() error type = %T, want *InsufficientDataError", err)
	}
	if insufficient.Found != 3 {
		t.Errorf("Found = %d, want 3", insufficient.Found)
	}
	if insufficient.Required != MinTrainingRecords {
		t.Errorf("Required = %d, want %d", insufficient.Required, MinTrainingRecords)
	}
}

func TestBuildDataset_UnlabeledRecordsExcluded(t *testing.T) {
	records := make([]*models.BatchRecord, 0, 8)
	for i := 0; i < 6; i++ {
		records = append(records, labeledRecord("LOT-00"+string(rune('1'+i)), models.AnalysisInitial, 60+float64(i)))
	}

	// Records without the target score count toward nothing.
	unlabeled := labeledRecord("LOT-900", models.AnalysisInitial, 0)
	unlabeled.AromaScore = nil
	records = append(records, unlabeled)

	ds, err := BuildDataset(records, "aroma_score", DefaultRecordFilter())
	if err != nil {
		t.Fatalf("BuildDataset() error = %v", err)
	}

	if ds.Len() != 6 {
		t.Errorf("Len() = %d, want 6", ds.Len())
	}
	for _, lot := range ds.LotNumbers {
		if lot == "LOT-900" {
			t.Error("unlabeled record should not appear in the dataset")
		}
	}
}

func TestBuildDataset_FilterExcludesOtherProduct(t *testing.T) {
	records := make([]*models.BatchRecord, 0, 7)
	for i := 0; i < 5; i++ {
		records = append(records, labeledRecord("LOT-A", models.AnalysisInitial, 65))
	}
	records = append(records,
		labeledRecord("LOT-B", models.AnalysisOtherProduct, 30),
		labeledRecord("LOT-C", models.AnalysisOtherProduct, 35),
	)

	ds, err := BuildDataset(records, "aroma_score", DefaultRecordFilter())
	if err != nil {
		t.Fatalf("BuildDataset() error = %v", err)
	}
	if ds.Len() != 5 {
		t.Errorf("Len() = %d, want 5 (other-product records excluded)", ds.Len())
	}

	// An empty filter admits everything.
	ds, err = BuildDataset(records, "aroma_score", RecordFilter{})
	if err != nil {
		t.Fatalf("BuildDataset() with empty filter error = %v", err)
	}
	if ds.Len() != 7 {
		t.Errorf("Len() = %d, want 7 with empty filter", ds.Len())
	}
}

func TestBuildDataset_MissingFeaturesAreNaN(t *testing.T) {
	records := make([]*models.BatchRecord, 0, 5)
	for i := 0; i < 5; i++ {
		rec := labeledRecord("LOT-A", models.AnalysisInitial, 65)
		rec.SugarContent = nil
		records = append(records, rec)
	}

	ds, err := BuildDataset(records, "aroma_score", DefaultRecordFilter())
	if err != nil {
		t.Fatalf("BuildDataset() error = %v", err)
	}

	sugarCol := -1
	for i, name := range ds.FeatureNames {
		if name == "sugar_content" {
			sugarCol = i
		}
	}
	if sugarCol < 0 {
		t.Fatal("sugar_content missing from feature schema")
	}

	for i, row := range ds.Rows {
		if !math.IsNaN(row[sugarCol]) {
			t.Errorf("row %d sugar_content = %v, want NaN", i, row[sugarCol])
		}
		if math.IsNaN(row[0]) {
			t.Errorf("row %d alcohol_content should not be NaN", i)
		}
	}
}

func TestBuildDataset_UnknownTarget(t *testing.T) {
	_, err := BuildDataset(nil, "color_score", DefaultRecordFilter())
	if err == nil {
		t.Fatal("BuildDataset() with unknown target should fail")
	}
	if _, ok := err.(*models.ValidationError); !ok {
		t.Errorf("error type = %T, want *models.ValidationError", err)
	}
}
