package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time { return &t }

// TestIssueResolutionDays verifies that resolution days stay undefined when
// either timestamp is missing.
func TestIssueResolutionDays(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	resolved := created.AddDate(0, 0, 5)

	tests := []struct {
		name     string
		issue    Issue
		wantDays float64
		wantOK   bool
	}{
		{
			name:     "both timestamps",
			issue:    Issue{Key: "SL-1", CreatedAt: timePtr(created), ResolvedAt: timePtr(resolved)},
			wantDays: 5,
			wantOK:   true,
		},
		{
			name:   "missing resolution",
			issue:  Issue{Key: "SL-2", CreatedAt: timePtr(created)},
			wantOK: false,
		},
		{
			name:   "missing creation",
			issue:  Issue{Key: "SL-3", ResolvedAt: timePtr(resolved)},
			wantOK: false,
		},
		{
			name:   "no timestamps",
			issue:  Issue{Key: "SL-4"},
			wantOK: false,
		},
		{
			name:     "same day resolution",
			issue:    Issue{Key: "SL-5", CreatedAt: timePtr(created), ResolvedAt: timePtr(created.Add(3 * time.Hour))},
			wantDays: 0,
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, ok := tt.issue.ResolutionDays()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantDays, days)
			}
		})
	}
}

// TestDatasetResolvedSubset checks that only rows with both timestamps make
// it into the resolved subset.
func TestDatasetResolvedSubset(t *testing.T) {
	created := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	resolved := created.AddDate(0, 0, 2)

	ds := &Dataset{Issues: []Issue{
		{Key: "SL-1", CreatedAt: timePtr(created), ResolvedAt: timePtr(resolved)},
		{Key: "SL-2", CreatedAt: timePtr(created)},
		{Key: "SL-3", ResolvedAt: timePtr(resolved)},
		{Key: "SL-4"},
	}}

	subset := ds.ResolvedSubset()
	assert.Len(t, subset, 1)
	assert.Equal(t, "SL-1", subset[0].Key)

	// SL-3 counts as completed (has a resolution timestamp) even though its
	// resolution days are undefined.
	assert.Equal(t, 2, ds.CompletedCount())
}

// TestWeightTablesSumToOne protects the invariant the final scores depend on.
func TestWeightTablesSumToOne(t *testing.T) {
	var effSum float64
	for _, w := range GetEfficiencyWeights() {
		effSum += w
	}
	assert.InDelta(t, 1.0, effSum, 1e-9)

	var distSum float64
	for _, w := range GetDistributionWeights() {
		distSum += w
	}
	assert.InDelta(t, 1.0, distSum, 1e-9)
}

// TestClassifyEfficiency walks the classification ladder.
func TestClassifyEfficiency(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{95, "Excellent"},
		{90, "Excellent"},
		{85, "Very Good"},
		{75, "Good"},
		{65, "Regular"},
		{55, "Low"},
		{40, "Critical"},
		{0, "Critical"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyEfficiency(tt.score), "score %.0f", tt.score)
	}
}

// TestAssessTeamHealth exercises both conditions of each rung.
func TestAssessTeamHealth(t *testing.T) {
	tests := []struct {
		score     float64
		busFactor int
		want      HealthLabel
	}{
		{85, 3, ExcellentHealth},
		{85, 2, GoodHealth}, // high score but bus factor too low for Excellent
		{72, 2, GoodHealth},
		{72, 1, RegularHealth},
		{61, 1, RegularHealth},
		{45, 1, AtRiskHealth},
		{30, 1, CriticalHealth},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AssessTeamHealth(tt.score, tt.busFactor),
			"score %.0f bus %d", tt.score, tt.busFactor)
	}
}

// TestDefaultScoreResult confirms the neutral result is internally
// consistent: contributions follow the weight table and sum to the final 50.
func TestDefaultScoreResult(t *testing.T) {
	res := DefaultScoreResult()

	assert.Equal(t, 50.0, res.FinalScore)
	assert.Equal(t, "Regular", res.Classification)
	assert.Len(t, res.Components, 4)

	var sum float64
	for dim, comp := range res.Components {
		assert.Equal(t, 50.0, comp.Score, "dimension %s", dim)
		sum += comp.Contribution
	}
	assert.InDelta(t, 50.0, sum, 1e-9)
}

// TestDefaultDistributionResult confirms the documented degraded result.
func TestDefaultDistributionResult(t *testing.T) {
	res := DefaultDistributionResult()

	assert.Equal(t, 50.0, res.Score)
	assert.Equal(t, 1, res.BusFactor)
	assert.Equal(t, IndeterminateHealth, res.TeamHealth)
	assert.Empty(t, res.Concentration)
	assert.Empty(t, res.Risks)
	assert.NotNil(t, res.Metrics.ItemsPerPerson)
}
