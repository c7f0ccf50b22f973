package flavor

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		found bool
	}{
		{name: "exact match", input: "vanillin", found: true},
		{name: "case insensitive", input: "Ethyl Acetate", found: true},
		{name: "unknown compound", input: "limonene", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := Lookup(tt.input)
			if ok != tt.found {
				t.Errorf("Lookup(%q) found = %v, want %v", tt.input, ok, tt.found)
			}
			if ok && c.Family == "" {
				t.Errorf("Lookup(%q) returned compound without family", tt.input)
			}
		})
	}
}

func TestByFamily(t *testing.T) {
	esters := ByFamily(FamilyEster)
	if len(esters) == 0 {
		t.Fatal("ByFamily(ester) should return compounds")
	}
	for _, c := range esters {
		if c.Family != FamilyEster {
			t.Errorf("compound %s has family %s, want ester", c.Name, c.Family)
		}
	}

	if got := ByFamily("terpene"); got != nil {
		t.Errorf("ByFamily(terpene) = %v, want nil", got)
	}
}

func TestRelevant(t *testing.T) {
	// 50 mg/L of esters exceeds every ester threshold except none of the
	// tannin or aldehyde ones, which are not measured here.
	relevant := Relevant(map[string]float64{"ester_concentration": 50})

	if len(relevant) != len(ByFamily(FamilyEster)) {
		t.Errorf("Relevant() has %d compounds, want all %d esters", len(relevant), len(ByFamily(FamilyEster)))
	}
	for _, c := range relevant {
		if c.Family != FamilyEster {
			t.Errorf("compound %s family = %s, want ester", c.Name, c.Family)
		}
	}
}

func TestRelevant_BelowThreshold(t *testing.T) {
	// 1 mg/L of tannins is below both tannin thresholds.
	if got := Relevant(map[string]float64{"tannin_level": 1}); len(got) != 0 {
		t.Errorf("Relevant() = %v, want none below threshold", got)
	}
}

func TestRelevant_IgnoresUnmappedFeatures(t *testing.T) {
	got := Relevant(map[string]float64{
		"alcohol_content": 1000,
		"acidity":         1000,
		"sugar_content":   1000,
	})
	if len(got) != 0 {
		t.Errorf("Relevant() = %v, want none for unmapped features", got)
	}
}

func TestRelevant_DeterministicOrder(t *testing.T) {
	// 500 mg/L exceeds every threshold in all three mapped families.
	// Compounds come back grouped by feature order (tannins, esters,
	// aldehydes), each family in table order, on every call.
	input := map[string]float64{
		"tannin_level":        500,
		"ester_concentration": 500,
		"aldehyde_level":      500,
	}

	want := append(append(ByFamily(FamilyTannin), ByFamily(FamilyEster)...), ByFamily(FamilyAldehyde)...)

	for run := 0; run < 5; run++ {
		got := Relevant(input)
		if len(got) != len(want) {
			t.Fatalf("run %d: Relevant() has %d compounds, want %d", run, len(got), len(want))
		}
		for i := range want {
			if got[i].Name != want[i].Name {
				t.Fatalf("run %d: Relevant()[%d] = %s, want %s", run, i, got[i].Name, want[i].Name)
			}
		}
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	first := All()
	first[0].Name = "mutated"

	second := All()
	if second[0].Name == "mutated" {
		t.Error("All() should return a copy of the table")
	}
}
