package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/schema"
)

// ComputeEfficiency scores one sprint's efficiency on a 0-100 scale from four
// weighted dimensions: velocity (delivery rate), quality (bug rate),
// predictability (estimate accuracy) and stability (scope change rate).
//
// daysPerPoint converts story-point estimates into expected days for the
// predictability dimension. It is an assumption, not a validated constant;
// callers should expose it as configuration. Pass 0 to use
// schema.DefaultDaysPerPoint.
//
// Same failure contract as ComputeDistribution: dimensions short of data fall
// back to documented neutral defaults, and a recovered panic yields
// schema.DefaultScoreResult.
func ComputeEfficiency(ds *schema.Dataset, daysPerPoint float64) (result *schema.ScoreResult) {
	return ComputeEfficiencyWeighted(ds, daysPerPoint, nil)
}

// ComputeEfficiencyWeighted is ComputeEfficiency with a custom weight table.
// A nil table means the named defaults. Callers with config-file overrides
// pass Config.ComputedEfficiencyWeights, which is already validated to sum
// to 1.0.
func ComputeEfficiencyWeighted(ds *schema.Dataset, daysPerPoint float64, weights map[schema.Dimension]float64) (result *schema.ScoreResult) {
	defer func() {
		if r := recover(); r != nil {
			contract.LogWarn("Sprint efficiency analysis failed", fmt.Errorf("%v", r))
			result = schema.DefaultScoreResult()
		}
	}()

	if daysPerPoint <= 0 {
		daysPerPoint = schema.DefaultDaysPerPoint
	}
	if weights == nil {
		weights = schema.GetEfficiencyWeights()
	}

	velocity := velocityScore(ds)
	quality := qualityScore(ds)
	predictability := predictabilityScore(ds, daysPerPoint)
	stability := stabilityScore(ds)

	final := velocity*weights[schema.VelocityDim] +
		quality*weights[schema.QualityDim] +
		predictability*weights[schema.PredictabilityDim] +
		stability*weights[schema.StabilityDim]

	components := map[schema.Dimension]schema.DimensionScore{
		schema.VelocityDim:       dimensionScore(velocity, weights[schema.VelocityDim]),
		schema.QualityDim:        dimensionScore(quality, weights[schema.QualityDim]),
		schema.PredictabilityDim: dimensionScore(predictability, weights[schema.PredictabilityDim]),
		schema.StabilityDim:      dimensionScore(stability, weights[schema.StabilityDim]),
	}

	return &schema.ScoreResult{
		FinalScore:      schema.Round2(final),
		Classification:  schema.ClassifyEfficiency(final),
		Components:      components,
		Insights:        efficiencyInsights(velocity, quality, predictability, stability),
		Recommendations: efficiencyRecommendations(velocity, quality, predictability, stability),
	}
}

func dimensionScore(score, weight float64) schema.DimensionScore {
	return schema.DimensionScore{
		Score:        schema.Round2(score),
		Weight:       weight,
		Contribution: schema.Round2(score * weight),
	}
}

// velocityScore rewards consistent delivery and penalizes low completion
// hard. Completion means the item carries a resolution timestamp. An item
// count above plan (delivery rate over 1.0) earns a capped bonus.
func velocityScore(ds *schema.Dataset) float64 {
	total := ds.Len()
	if total == 0 {
		return 0.0
	}
	rate := float64(ds.CompletedCount()) / float64(total)

	var score float64
	switch {
	case rate >= 0.9:
		score = 100
	case rate >= 0.8:
		score = 90
	case rate >= 0.7:
		score = 75
	case rate >= 0.6:
		score = 60
	case rate >= 0.5:
		score = 40
	default:
		score = rate * 50
	}

	if rate > 1.0 {
		score = math.Min(100, score+(rate-1.0)*20)
	}
	return score
}

// qualityScore is inversely proportional to the bug rate. Bug detection is a
// keyword substring match on the normalized item type, so "Bug de produção"
// counts too.
func qualityScore(ds *schema.Dataset) float64 {
	total := ds.Len()
	if total == 0 {
		return 100.0
	}

	bugs := 0
	for idx := range ds.Issues {
		if IsBugType(ds.Issues[idx].ItemType) {
			bugs++
		}
	}
	rate := float64(bugs) / float64(total)

	switch {
	case rate <= 0.05:
		return 100
	case rate <= 0.1:
		return 85
	case rate <= 0.15:
		return 70
	case rate <= 0.2:
		return 55
	case rate <= 0.3:
		return 35
	default:
		return math.Max(10, 100-rate*200)
	}
}

// minPredictabilityPairs is the smallest sample of estimate/actual pairs the
// mean absolute percentage error is computed over.
const minPredictabilityPairs = 3

// predictabilityScore measures estimate accuracy as the mean absolute
// percentage error between estimated days (story points * daysPerPoint) and
// actual resolution days, over completed items carrying both values. Fewer
// than three usable pairs returns the neutral default 70.
func predictabilityScore(ds *schema.Dataset, daysPerPoint float64) float64 {
	var errorSum float64
	pairs := 0
	for idx := range ds.Issues {
		iss := &ds.Issues[idx]
		if !iss.Resolved() || iss.StoryPoints <= 0 {
			continue
		}
		actual, ok := iss.ResolutionDays()
		if !ok {
			continue
		}
		estimated := iss.StoryPoints * daysPerPoint
		errorSum += math.Abs(actual-estimated) / estimated * 100
		pairs++
	}
	if pairs < minPredictabilityPairs {
		return 70.0
	}

	meanError := errorSum / float64(pairs)
	switch {
	case meanError <= 20:
		return 100
	case meanError <= 30:
		return 85
	case meanError <= 50:
		return 70
	case meanError <= 75:
		return 50
	case meanError <= 100:
		return 30
	default:
		return math.Max(10, 100-meanError)
	}
}

// stabilityScore measures scope stability as the share of items created after
// the sprint started. Without a sprint start date it returns the neutral
// default 80.
func stabilityScore(ds *schema.Dataset) float64 {
	if ds.Sprint.StartDate == nil {
		return 80.0
	}
	total := ds.Len()
	if total == 0 {
		return 80.0
	}

	added := 0
	for idx := range ds.Issues {
		iss := &ds.Issues[idx]
		if iss.CreatedAt != nil && iss.CreatedAt.After(*ds.Sprint.StartDate) {
			added++
		}
	}
	rate := float64(added) / float64(total)

	switch {
	case rate <= 0.1:
		return 100
	case rate <= 0.2:
		return 80
	case rate <= 0.3:
		return 60
	case rate <= 0.5:
		return 40
	default:
		return math.Max(10, 100-rate*100)
	}
}

// efficiencyInsights emits one observation per dimension that falls into a
// notable band, high or low.
func efficiencyInsights(velocity, quality, predictability, stability float64) []string {
	insights := []string{}

	if velocity >= 85 {
		insights = append(insights, "Excellent delivery rate, the team is productive")
	} else if velocity < 60 {
		insights = append(insights, "Low delivery rate, review planning or capacity")
	}

	if quality >= 85 {
		insights = append(insights, "Low bug rate, quality is high")
	} else if quality < 60 {
		insights = append(insights, "High bug rate, invest in tests and reviews")
	}

	if predictability >= 80 {
		insights = append(insights, "Accurate estimates, good team maturity")
	} else if predictability < 60 {
		insights = append(insights, "Inaccurate estimates, refine the planning process")
	}

	if stability >= 85 {
		insights = append(insights, "Stable scope, good initial planning")
	} else if stability < 60 {
		insights = append(insights, "Frequent scope changes, improve refinement")
	}

	return insights
}

// efficiencyRecommendations surfaces suggestions only for the single
// lowest-scoring dimension, and only once it drops below 70. Surfacing one
// dimension even when several are weak keeps the output focused; documented
// as a deliberate choice, open to revisiting.
func efficiencyRecommendations(velocity, quality, predictability, stability float64) []string {
	lowestDim := schema.VelocityDim
	lowest := velocity
	for _, candidate := range []struct {
		dim   schema.Dimension
		score float64
	}{
		{schema.QualityDim, quality},
		{schema.PredictabilityDim, predictability},
		{schema.StabilityDim, stability},
	} {
		if candidate.score < lowest {
			lowestDim = candidate.dim
			lowest = candidate.score
		}
	}

	if lowest >= 70 {
		return []string{}
	}

	switch lowestDim {
	case schema.VelocityDim:
		return []string{
			"Reduce sprint scope or increase team capacity",
			"Identify impediments affecting delivery",
		}
	case schema.QualityDim:
		return []string{
			"Add more automated tests",
			"Make code review mandatory",
			"Include quality criteria in the Definition of Done",
		}
	case schema.PredictabilityDim:
		return []string{
			"Train the team in estimation techniques such as planning poker",
			"Split large stories into smaller ones",
			"Calibrate estimates with historical data",
		}
	default:
		return []string{
			"Improve refinement before planning",
			"Define clear criteria for scope changes",
			"Educate stakeholders on the impact of changes",
		}
	}
}

// DimensionLabel renders a dimension name for reports.
func DimensionLabel(d schema.Dimension) string {
	return strings.ToUpper(string(d)[:1]) + string(d)[1:]
}
