package core

import (
	"sort"

	"github.com/tcandido/sprintlens/schema"
)

// ComputeTimeStats returns resolution-time descriptive statistics over the
// resolved subset of the dataset. When nothing is resolved, every statistic
// is nil and Count is 0, so callers can distinguish "no data" from "zero
// days" without any field defaulting to zero.
func ComputeTimeStats(ds *schema.Dataset) schema.TimeStats {
	days := resolutionDaysOf(ds.Issues)
	if len(days) == 0 {
		return schema.TimeStats{Count: 0}
	}

	sort.Float64s(days)

	var sum float64
	for _, d := range days {
		sum += d
	}

	return schema.TimeStats{
		Mean:   schema.Float64Ptr(sum / float64(len(days))),
		Median: schema.Float64Ptr(percentile(days, 0.5)),
		P85:    schema.Float64Ptr(percentile(days, 0.85)),
		Min:    schema.Float64Ptr(days[0]),
		Max:    schema.Float64Ptr(days[len(days)-1]),
		Count:  len(days),
	}
}

// GroupedTimeStats returns, for each group produced by keyFn, the mean
// resolution time and count over the resolved subset. Groups with zero
// resolved items are omitted rather than emitted with a zero mean. Output
// is ordered by descending count, then group name.
func GroupedTimeStats(ds *schema.Dataset, keyFn func(*schema.Issue) string) []schema.GroupTimeStats {
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for idx := range ds.Issues {
		iss := &ds.Issues[idx]
		days, ok := iss.ResolutionDays()
		if !ok {
			continue
		}
		key := keyFn(iss)
		sums[key] += days
		counts[key]++
	}

	groups := make([]schema.GroupTimeStats, 0, len(counts))
	for key, count := range counts {
		groups = append(groups, schema.GroupTimeStats{
			Group:    key,
			MeanDays: schema.Round1(sums[key] / float64(count)),
			Count:    count,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Group < groups[j].Group
	})

	return groups
}

// GroupKeyFunc maps a grouping field name to its issue key extractor.
// Unknown names fall back to assignee, the most common grouping.
func GroupKeyFunc(groupBy string) func(*schema.Issue) string {
	switch groupBy {
	case "type":
		return func(i *schema.Issue) string { return i.ItemType }
	case "component":
		return func(i *schema.Issue) string { return i.Component }
	default:
		return func(i *schema.Issue) string { return i.Assignee }
	}
}

// resolutionDaysOf collects the defined resolution days of the given issues.
func resolutionDaysOf(issues []schema.Issue) []float64 {
	days := make([]float64, 0, len(issues))
	for idx := range issues {
		if d, ok := issues[idx].ResolutionDays(); ok {
			days = append(days, d)
		}
	}
	return days
}

// percentile computes the q-th quantile of sorted values using linear
// interpolation between order statistics (the numpy/pandas default). The
// choice matters: p85 feeds the SLE indicator and must reproduce the numbers
// the team has historically tracked.
func percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	pos := q * float64(n-1)
	lower := int(pos)
	if lower >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}
