package core

import (
	"fmt"
	"sort"

	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/schema"
)

// Canonical type names the executive summary and velocity metrics key on.
const (
	typeStory      = "História"
	typeTechDebt   = "Débito Técnico"
	typeSpike      = "Spike"
	typeBug        = "Bug"
	typeImpediment = "Impedimento"
)

// storyPointTypes are the canonical types that carry meaningful estimates;
// velocity metrics are restricted to them.
var storyPointTypes = map[string]struct{}{
	typeStory:    {},
	typeTechDebt: {},
	typeSpike:    {},
}

// ComputeMetrics builds the full sprint metrics aggregate: executive counts,
// velocity, quality, team load and flow. A pure composition layer over the
// dataset; every type grouping goes through CanonicalType so accent and case
// variants land in the same bucket.
func ComputeMetrics(ds *schema.Dataset) (m *schema.SprintMetrics) {
	defer func() {
		if r := recover(); r != nil {
			contract.LogWarn("Sprint metrics computation failed", fmt.Errorf("%v", r))
			m = &schema.SprintMetrics{Sprint: ds.Sprint}
		}
	}()

	return &schema.SprintMetrics{
		Sprint:    ds.Sprint,
		Executive: executiveSummary(ds),
		Velocity:  velocityMetrics(ds),
		Quality:   qualityMetrics(ds),
		Team:      teamMetrics(ds),
		Flow:      flowMetrics(ds),
	}
}

func executiveSummary(ds *schema.Dataset) schema.ExecutiveSummary {
	counts := map[string]int{
		typeStory:      0,
		typeTechDebt:   0,
		typeSpike:      0,
		typeBug:        0,
		typeImpediment: 0,
	}
	for idx := range ds.Issues {
		canonical := CanonicalType(ds.Issues[idx].ItemType)
		if _, interesting := counts[canonical]; interesting {
			counts[canonical]++
		}
	}
	return schema.ExecutiveSummary{
		TotalItems:   ds.Len(),
		Stories:      counts[typeStory],
		TechDebt:     counts[typeTechDebt],
		Spikes:       counts[typeSpike],
		Bugs:         counts[typeBug],
		Impediments:  counts[typeImpediment],
		CountsByType: counts,
	}
}

func velocityMetrics(ds *schema.Dataset) schema.VelocityMetrics {
	var total, completed float64
	estimated := 0
	for idx := range ds.Issues {
		iss := &ds.Issues[idx]
		if _, pointed := storyPointTypes[CanonicalType(iss.ItemType)]; !pointed {
			continue
		}
		if iss.StoryPoints <= 0 {
			continue
		}
		estimated++
		total += iss.StoryPoints
		if IsCompletedStatus(iss.Status) {
			completed += iss.StoryPoints
		}
	}

	rate := 0.0
	if total > 0 {
		rate = schema.Round1(completed / total * 100)
	}
	average := 0.0
	if estimated > 0 {
		average = schema.Round2(total / float64(estimated))
	}

	return schema.VelocityMetrics{
		TotalStoryPoints:     schema.Round1(total),
		CompletedStoryPoints: schema.Round1(completed),
		CompletionRate:       rate,
		EstimatedItems:       estimated,
		AverageStoryPoints:   average,
	}
}

func qualityMetrics(ds *schema.Dataset) schema.QualityMetrics {
	total := ds.Len()
	bugs, impediments := 0, 0
	for idx := range ds.Issues {
		switch CanonicalType(ds.Issues[idx].ItemType) {
		case typeBug:
			bugs++
		case typeImpediment:
			impediments++
		}
	}

	bugRate, impedimentRate := 0.0, 0.0
	if total > 0 {
		bugRate = schema.Round1(float64(bugs) / float64(total) * 100)
		impedimentRate = schema.Round1(float64(impediments) / float64(total) * 100)
	}
	score := 100 - bugRate - impedimentRate
	if score < 0 {
		score = 0
	}

	return schema.QualityMetrics{
		TotalBugs:      bugs,
		TotalImpedims:  impediments,
		BugRate:        bugRate,
		ImpedimentRate: impedimentRate,
		QualityScore:   schema.Round1(score),
	}
}

// teamMetrics counts raw assignee values. Identity merging and placeholder
// filtering belong to the knowledge engine; this layer reports the tracker's
// view of load as-is.
func teamMetrics(ds *schema.Dataset) schema.TeamMetrics {
	counts := make(map[string]int)
	for idx := range ds.Issues {
		assignee := ds.Issues[idx].Assignee
		if assignee == "" {
			continue
		}
		counts[assignee]++
	}

	total := 0
	for _, c := range counts {
		total += c
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	load := make(map[string]float64, len(counts))
	mostLoaded := ""
	maxItems := 0
	for _, name := range names {
		if total > 0 {
			load[name] = schema.Round1(float64(counts[name]) / float64(total) * 100)
		}
		if counts[name] > maxItems {
			maxItems = counts[name]
			mostLoaded = name
		}
	}

	return schema.TeamMetrics{
		TotalMembers:     len(counts),
		ItemsPerMember:   counts,
		WorkloadPercent:  load,
		MostLoadedMember: mostLoaded,
		MaxItems:         maxItems,
	}
}

func flowMetrics(ds *schema.Dataset) schema.FlowMetrics {
	wip := 0
	for idx := range ds.Issues {
		iss := &ds.Issues[idx]
		if IsInProgressStatus(iss.Status) && !iss.Resolved() {
			wip++
		}
	}

	var days []float64
	for idx := range ds.Issues {
		if d, ok := ds.Issues[idx].ResolutionDays(); ok {
			days = append(days, d)
		}
	}

	mean := 0.0
	if len(days) > 0 {
		var sum float64
		for _, d := range days {
			sum += d
		}
		mean = schema.Round1(sum / float64(len(days)))
	}

	return schema.FlowMetrics{
		WIPCount:         wip,
		ThroughputCount:  len(days),
		AverageCycleTime: mean,
		CycleTimes:       days,
	}
}
