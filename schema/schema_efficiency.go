package schema

// DimensionScore is one efficiency dimension with its weight applied.
type DimensionScore struct {
	Score        float64 `json:"score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// ScoreResult is the composite sprint efficiency score.
// FinalScore is the weighted sum of the component scores and always lies
// in [0, 100].
type ScoreResult struct {
	FinalScore      float64                      `json:"final_score"`
	Classification  string                       `json:"classification"`
	Components      map[Dimension]DimensionScore `json:"components"`
	Insights        []string                     `json:"insights"`
	Recommendations []string                     `json:"recommendations"`
}

// DefaultScoreResult is the neutral result returned when the efficiency
// engine cannot compute a meaningful score. All dimensions sit at 50 so the
// weighted sum is exactly 50.
func DefaultScoreResult() *ScoreResult {
	weights := GetEfficiencyWeights()
	components := make(map[Dimension]DimensionScore, len(weights))
	for dim, w := range weights {
		components[dim] = DimensionScore{Score: 50, Weight: w, Contribution: Round2(50 * w)}
	}
	// Classification is pinned to "Regular" rather than derived from the
	// ladder (which would say "Low"): the neutral result signals "no
	// verdict", not a poor sprint.
	return &ScoreResult{
		FinalScore:      50.0,
		Classification:  "Regular",
		Components:      components,
		Insights:        []string{"Insufficient data for a detailed analysis"},
		Recommendations: []string{"Collect more sprint data for an accurate analysis"},
	}
}
