package reports

import (
	"fmt"
	"sort"
	"strings"
)

const systemPrompt = `You are an expert sommelier and liquor analyst. ` +
	`You write detailed, professional flavor reports grounded strictly in ` +
	`the measurements provided, using precise sensory vocabulary.`

// buildFlavorPrompt renders the measurement data into the user prompt.
// Sections mirror the report structure the operator expects: profile
// summary, aroma, palate, finish, quality assessment, pairings.
func buildFlavorPrompt(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate a flavor report for LOT %s", in.LotNumber)
	if in.ProductName != "" {
		fmt.Fprintf(&b, " (%s)", in.ProductName)
	}
	b.WriteString(".\n\n**Chemical Composition:**\n")

	for _, k := range sortedKeys(in.Chemical) {
		fmt.Fprintf(&b, "- %s: %g\n", titleize(k), in.Chemical[k])
	}

	if len(in.Scores) > 0 {
		if in.ScoresPredicted {
			b.WriteString("\n**Predicted Sensory Scores (0-100, model estimates):**\n")
		} else {
			b.WriteString("\n**Sensory Scores (0-100):**\n")
		}
		for _, k := range sortedKeys(in.Scores) {
			fmt.Fprintf(&b, "- %s: %.1f\n", titleize(k), in.Scores[k])
		}
	}

	if in.TastingNotes != "" {
		b.WriteString("\n**Tasting Notes:**\n")
		b.WriteString(in.TastingNotes)
		b.WriteString("\n")
	}

	if len(in.Compounds) > 0 {
		b.WriteString("\n**Flavor Compounds Above Perception Threshold:**\n")
		for _, c := range in.Compounds {
			fmt.Fprintf(&b, "- %s (%s): %s\n", c.Name, c.Family, strings.Join(c.Descriptors, ", "))
		}
	}

	b.WriteString(`
Please provide:
1. **Flavor Profile Summary**: a concise overview of the expected flavor characteristics
2. **Aroma Analysis**: detailed description of aromatic compounds and expected nose
3. **Taste & Palate**: flavor notes, balance, and complexity
4. **Finish**: aftertaste and lingering flavors
5. **Quality Assessment**: overall evaluation and drinking recommendations
6. **Pairing Suggestions**: food or occasion pairings
`)

	return b.String()
}

// buildComparisonPrompt renders the per-LOT measurements into a
// comparative prompt centered on the focus LOT.
func buildComparisonPrompt(in ComparisonInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Compare and analyze these liquor LOTs, with focus on LOT %s.\n", in.FocusLot)

	for _, lot := range in.Lots {
		fmt.Fprintf(&b, "\n**LOT %s", lot.LotNumber)
		if lot.ProductName != "" {
			fmt.Fprintf(&b, " (%s)", lot.ProductName)
		}
		b.WriteString(":**\n")
		for _, k := range sortedKeys(lot.Chemical) {
			fmt.Fprintf(&b, "- %s: %g\n", titleize(k), lot.Chemical[k])
		}
		for _, k := range sortedKeys(lot.Scores) {
			fmt.Fprintf(&b, "- %s: %.1f\n", titleize(k), lot.Scores[k])
		}
	}

	fmt.Fprintf(&b, `
Provide a comparative analysis including:
1. **Key Differences**: chemical composition differences across LOTs
2. **Focus LOT**: how LOT %s stands out from the others
3. **Quality Ranking**: ranked order with rationale
4. **Recommendations**: best use and target market for each LOT
5. **Trends**: patterns observed across the LOTs
`, in.FocusLot)

	return b.String()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// titleize turns "alcohol_content" into "Alcohol Content"
func titleize(s string) string {
	parts := strings.Split(s, "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
