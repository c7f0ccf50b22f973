package reports

import (
	"strings"
	"testing"
)

func TestBuildFlavorPrompt_Sections(t *testing.T) {
	in := Input{
		LotNumber:   "LOT-001",
		ProductName: "Single Malt",
		Chemical: map[string]float64{
			"alcohol_content": 43.0,
			"acidity":         3.2,
		},
		Scores:       map[string]float64{"aroma_score": 82.5},
		TastingNotes: "honeyed with a long finish",
	}

	prompt := buildFlavorPrompt(in)

	for _, want := range []string{
		"LOT LOT-001 (Single Malt)",
		"- Alcohol Content: 43",
		"- Acidity: 3.2",
		"**Sensory Scores (0-100):**",
		"- Aroma Score: 82.5",
		"honeyed with a long finish",
		"**Flavor Profile Summary**",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildFlavorPrompt_PredictedScoresLabeled(t *testing.T) {
	in := Input{
		LotNumber:       "LOT-002",
		Scores:          map[string]float64{"taste_score": 70},
		ScoresPredicted: true,
	}
	prompt := buildFlavorPrompt(in)
	if !strings.Contains(prompt, "Predicted Sensory Scores") {
		t.Error("predicted scores should be labeled as model estimates")
	}
}

func TestBuildComparisonPrompt(t *testing.T) {
	in := ComparisonInput{
		FocusLot: "LOT-002",
		Lots: []Input{
			{
				LotNumber:   "LOT-002",
				ProductName: "Reserve",
				Chemical:    map[string]float64{"alcohol_content": 46.0},
				Scores:      map[string]float64{"overall_score": 88},
			},
			{
				LotNumber: "LOT-003",
				Chemical:  map[string]float64{"alcohol_content": 40.0},
			},
		},
	}

	prompt := buildComparisonPrompt(in)

	for _, want := range []string{
		"focus on LOT LOT-002",
		"**LOT LOT-002 (Reserve):**",
		"**LOT LOT-003:**",
		"- Alcohol Content: 46",
		"- Overall Score: 88.0",
		"**Quality Ranking**",
		"how LOT LOT-002 stands out",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if strings.Index(prompt, "LOT-002 (Reserve)") > strings.Index(prompt, "**LOT LOT-003:**") {
		t.Error("LOTs should render in input order")
	}
}

func TestBuildComparisonPrompt_Deterministic(t *testing.T) {
	in := ComparisonInput{
		FocusLot: "LOT-010",
		Lots: []Input{
			{
				LotNumber: "LOT-010",
				Chemical: map[string]float64{
					"alcohol_content":     41.0,
					"acidity":             3.0,
					"sugar_content":       2.0,
					"tannin_level":        120,
					"ester_concentration": 15,
					"aldehyde_level":      8,
				},
			},
			{LotNumber: "LOT-011", Chemical: map[string]float64{"acidity": 3.5, "alcohol_content": 39.0}},
		},
	}

	first := buildComparisonPrompt(in)
	for i := 0; i < 5; i++ {
		if got := buildComparisonPrompt(in); got != first {
			t.Fatal("identical inputs should render identical prompts")
		}
	}
}
