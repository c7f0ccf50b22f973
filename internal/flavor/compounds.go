// Package flavor holds the static flavor-chemistry reference table: a
// human-curated mapping from chemical compound to sensory descriptors
// and odor threshold. It is consumed only by the report generator; the
// prediction pipeline never reads it.
package flavor

import (
	"strings"

	"liquor-analytics/internal/models"
)

// Compound describes one entry of the reference table
type Compound struct {
	Name         string   `json:"name"`
	Family       string   `json:"family"`
	Descriptors  []string `json:"descriptors"`
	ThresholdMgL float64  `json:"threshold_mg_l"`
}

// Families used by the table. Each maps to a measured chemical feature.
const (
	FamilyEster    = "ester"
	FamilyAldehyde = "aldehyde"
	FamilyTannin   = "tannin"
	FamilyAcid     = "acid"
	FamilyAlcohol  = "alcohol"
)

var compounds = []Compound{
	{
		Name:         "ethyl acetate",
		Family:       FamilyEster,
		Descriptors:  []string{"pear", "solvent", "nail polish at excess"},
		ThresholdMgL: 12.3,
	},
	{
		Name:         "isoamyl acetate",
		Family:       FamilyEster,
		Descriptors:  []string{"banana", "pear drop"},
		ThresholdMgL: 0.03,
	},
	{
		Name:         "ethyl hexanoate",
		Family:       FamilyEster,
		Descriptors:  []string{"green apple", "aniseed"},
		ThresholdMgL: 0.005,
	},
	{
		Name:         "ethyl octanoate",
		Family:       FamilyEster,
		Descriptors:  []string{"tropical fruit", "apricot"},
		ThresholdMgL: 0.002,
	},
	{
		Name:         "phenethyl acetate",
		Family:       FamilyEster,
		Descriptors:  []string{"rose", "honey"},
		ThresholdMgL: 0.25,
	},
	{
		Name:         "acetaldehyde",
		Family:       FamilyAldehyde,
		Descriptors:  []string{"green apple", "fresh cut grass", "pungent at excess"},
		ThresholdMgL: 0.5,
	},
	{
		Name:         "furfural",
		Family:       FamilyAldehyde,
		Descriptors:  []string{"almond", "bread", "caramel"},
		ThresholdMgL: 15.0,
	},
	{
		Name:         "vanillin",
		Family:       FamilyAldehyde,
		Descriptors:  []string{"vanilla", "sweet"},
		ThresholdMgL: 0.02,
	},
	{
		Name:         "syringaldehyde",
		Family:       FamilyAldehyde,
		Descriptors:  []string{"smoky", "woody", "spice"},
		ThresholdMgL: 15.0,
	},
	{
		Name:         "gallic acid",
		Family:       FamilyTannin,
		Descriptors:  []string{"astringent", "drying"},
		ThresholdMgL: 250.0,
	},
	{
		Name:         "ellagitannin",
		Family:       FamilyTannin,
		Descriptors:  []string{"oak", "structure", "bitterness at excess"},
		ThresholdMgL: 100.0,
	},
	{
		Name:         "acetic acid",
		Family:       FamilyAcid,
		Descriptors:  []string{"vinegar", "sharp"},
		ThresholdMgL: 200.0,
	},
	{
		Name:         "lactic acid",
		Family:       FamilyAcid,
		Descriptors:  []string{"soft", "creamy", "yogurt"},
		ThresholdMgL: 400.0,
	},
	{
		Name:         "phenethyl alcohol",
		Family:       FamilyAlcohol,
		Descriptors:  []string{"rose", "floral"},
		ThresholdMgL: 7.5,
	},
	{
		Name:         "isoamyl alcohol",
		Family:       FamilyAlcohol,
		Descriptors:  []string{"fusel", "whiskey", "harsh at excess"},
		ThresholdMgL: 30.0,
	},
}

// All returns the full reference table
func All() []Compound {
	out := make([]Compound, len(compounds))
	copy(out, compounds)
	return out
}

// Lookup finds a compound by name, case-insensitive
func Lookup(name string) (Compound, bool) {
	for _, c := range compounds {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Compound{}, false
}

// ByFamily returns all compounds of a chemical family
func ByFamily(family string) []Compound {
	var out []Compound
	for _, c := range compounds {
		if c.Family == family {
			out = append(out, c)
		}
	}
	return out
}

// featureFamilies maps measured chemical features to compound families
var featureFamilies = map[string]string{
	"ester_concentration": FamilyEster,
	"aldehyde_level":      FamilyAldehyde,
	"tannin_level":        FamilyTannin,
}

// Relevant returns compounds whose odor threshold is exceeded by the
// measured family concentration, i.e. compounds expected to be
// perceptible in the sample. Features without a family mapping
// (alcohol content, pH, sugar) are ignored. Output order follows the
// canonical feature order so identical inputs render identically.
func Relevant(concentrations map[string]float64) []Compound {
	var out []Compound
	for _, feature := range models.FeatureNames() {
		value, ok := concentrations[feature]
		if !ok {
			continue
		}
		family, ok := featureFamilies[feature]
		if !ok {
			continue
		}
		for _, c := range ByFamily(family) {
			if value >= c.ThresholdMgL {
				out = append(out, c)
			}
		}
	}
	return out
}
