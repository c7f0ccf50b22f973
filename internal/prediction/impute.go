package prediction

import (
	"fmt"
	"math"
)

// Impute fills missing feature values with the arithmetic mean of that
// feature across the non-missing records of the same dataset. Statistics
// are computed from the current snapshot on every call, never cached, so
// a complete dataset passes through unchanged.
//
// A feature missing in every record is filled with zero and a non-fatal
// warning is recorded on the dataset.
func Impute(ds *Dataset) {
	for col := range ds.FeatureNames {
		sum := 0.0
		count := 0
		for _, row := range ds.Rows {
			if !math.IsNaN(row[col]) {
				sum += row[col]
				count++
			}
		}

		fill := 0.0
		if count > 0 {
			fill = sum / float64(count)
		} else {
			ds.Warnings = append(ds.Warnings, fmt.Sprintf(
				"feature %s has no measured values; imputed with zero", ds.FeatureNames[col]))
		}

		for _, row := range ds.Rows {
			if math.IsNaN(row[col]) {
				row[col] = fill
			}
		}
	}
}
