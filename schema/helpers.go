package schema

import "math"

// Round1 rounds to one decimal place. Percentages and day averages are
// reported at this precision.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places. Scores and ratios are reported at
// this precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Float64Ptr returns a pointer to v. Used when populating nullable
// statistics.
func Float64Ptr(v float64) *float64 {
	return &v
}

// Clamp01 clamps v to the [0, 1] interval.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
