package core

import (
	"fmt"
	"sort"

	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/schema"
)

// placeholderAssignees are generic account names excluded from person-level
// analyses. Compared in normalized form.
var placeholderAssignees = map[string]struct{}{
	"unassigned":    {},
	"n/a":           {},
	"nao atribuido": {},
	"admin":         {},
	"system":        {},
}

// ComputeDistribution quantifies how concentrated and fragile the team's
// knowledge/workload distribution is: per-person concentration, task-type
// diversity, component coverage, bus factor, an aggregate 0-100 score,
// classified risks and recommendations.
//
// It never returns an error. When no person survives assignee cleaning the
// documented default result is returned; a panic anywhere inside the
// computation is recovered, logged and converted to the same default, since
// this indicator feeds a dashboard that must not crash on malformed tracker
// data. Preconditions are validated up front so the recovery path only
// catches genuine programming errors.
func ComputeDistribution(ds *schema.Dataset) (result *schema.DistributionResult) {
	return ComputeDistributionWeighted(ds, nil)
}

// ComputeDistributionWeighted is ComputeDistribution with a custom factor
// weight table. A nil table means the named defaults. Callers with
// config-file overrides pass Config.ComputedDistributionWeights, which is
// already validated to sum to 1.0.
func ComputeDistributionWeighted(ds *schema.Dataset, weights map[schema.Factor]float64) (result *schema.DistributionResult) {
	defer func() {
		if r := recover(); r != nil {
			contract.LogWarn("Knowledge distribution analysis failed", fmt.Errorf("%v", r))
			result = schema.DefaultDistributionResult()
		}
	}()

	clean := cleanAssignees(ds.Issues)
	if len(clean) == 0 {
		return schema.DefaultDistributionResult()
	}

	concentration := analyzeConcentration(clean)
	diversity := analyzeDiversity(clean, concentration)
	coverage := analyzeCoverage(clean, concentration)
	busFactor := computeBusFactor(concentration)
	score := distributionScore(concentration, diversity, coverage, busFactor, weights)
	risks := identifyRisks(concentration, diversity, coverage)

	itemsPerPerson := make(map[string]int, len(concentration))
	for _, pc := range concentration {
		itemsPerPerson[pc.Person] = pc.Items
	}

	return &schema.DistributionResult{
		Score:           score,
		BusFactor:       busFactor,
		Concentration:   concentration,
		Diversity:       diversity,
		Coverage:        coverage,
		Risks:           risks,
		Recommendations: buildDistributionRecommendations(risks, busFactor),
		TeamHealth:      schema.AssessTeamHealth(score, busFactor),
		Metrics: schema.DistributionMetrics{
			TotalPeople:     len(concentration),
			ItemsPerPerson:  itemsPerPerson,
			KnowledgeAreas:  countDistinct(clean, func(i *schema.Issue) string { return i.ItemType }),
			CoverageOverlap: coverageOverlap(coverage),
		},
	}
}

// cleanAssignees drops rows without a usable assignee, excludes placeholder
// accounts and title-cases names so spelling variants merge into one person.
func cleanAssignees(issues []schema.Issue) []schema.Issue {
	clean := make([]schema.Issue, 0, len(issues))
	for _, iss := range issues {
		name := TitleCaseName(iss.Assignee)
		if name == "" {
			continue
		}
		if _, generic := placeholderAssignees[Normalize(name)]; generic {
			continue
		}
		iss.Assignee = name
		clean = append(clean, iss)
	}
	return clean
}

// analyzeConcentration computes each person's share of the cleaned workload,
// sorted by descending item count so the bus factor reads off the prefix.
// Level and risk are two separate scales over the same share: the risk
// thresholds are intentionally looser.
func analyzeConcentration(clean []schema.Issue) []schema.PersonConcentration {
	total := len(clean)
	counts := make(map[string]int)
	for idx := range clean {
		counts[clean[idx].Assignee]++
	}

	out := make([]schema.PersonConcentration, 0, len(counts))
	for person, count := range counts {
		share := float64(count) / float64(total)
		out = append(out, schema.PersonConcentration{
			Person:             person,
			Items:              count,
			Percentage:         schema.Round1(share * 100),
			ConcentrationLevel: concentrationLevel(share),
			RiskLevel:          concentrationRiskLevel(share),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Items != out[j].Items {
			return out[i].Items > out[j].Items
		}
		return out[i].Person < out[j].Person
	})

	return out
}

// analyzeDiversity computes, per person, the fraction of the dataset's
// distinct item types that person has handled. Output follows the
// concentration ordering.
func analyzeDiversity(clean []schema.Issue, concentration []schema.PersonConcentration) []schema.PersonDiversity {
	totalTypes := countDistinct(clean, func(i *schema.Issue) string { return i.ItemType })

	typesByPerson := make(map[string][]string)
	seen := make(map[string]map[string]struct{})
	for idx := range clean {
		iss := &clean[idx]
		if seen[iss.Assignee] == nil {
			seen[iss.Assignee] = make(map[string]struct{})
		}
		key := Normalize(iss.ItemType)
		if _, dup := seen[iss.Assignee][key]; dup {
			continue
		}
		seen[iss.Assignee][key] = struct{}{}
		typesByPerson[iss.Assignee] = append(typesByPerson[iss.Assignee], iss.ItemType)
	}

	out := make([]schema.PersonDiversity, 0, len(concentration))
	for _, pc := range concentration {
		types := typesByPerson[pc.Person]
		ratio := 0.0
		if totalTypes > 0 {
			ratio = float64(len(types)) / float64(totalTypes)
		}
		out = append(out, schema.PersonDiversity{
			Person:     pc.Person,
			TypesCount: len(types),
			TotalTypes: totalTypes,
			Ratio:      schema.Round2(ratio),
			Level:      diversityLevel(ratio),
			Types:      types,
		})
	}
	return out
}

// analyzeCoverage applies the diversity ratio logic to the component field,
// falling back to the item type as a proxy when no component is populated.
func analyzeCoverage(clean []schema.Issue, concentration []schema.PersonConcentration) []schema.PersonCoverage {
	componentOf := func(i *schema.Issue) string { return i.Component }
	hasComponents := false
	for idx := range clean {
		if clean[idx].Component != "" {
			hasComponents = true
			break
		}
	}
	if !hasComponents {
		componentOf = func(i *schema.Issue) string { return i.ItemType }
	}

	totalComponents := countDistinct(clean, componentOf)

	componentsByPerson := make(map[string][]string)
	seen := make(map[string]map[string]struct{})
	for idx := range clean {
		iss := &clean[idx]
		comp := componentOf(iss)
		if comp == "" {
			continue
		}
		if seen[iss.Assignee] == nil {
			seen[iss.Assignee] = make(map[string]struct{})
		}
		key := Normalize(comp)
		if _, dup := seen[iss.Assignee][key]; dup {
			continue
		}
		seen[iss.Assignee][key] = struct{}{}
		componentsByPerson[iss.Assignee] = append(componentsByPerson[iss.Assignee], comp)
	}

	out := make([]schema.PersonCoverage, 0, len(concentration))
	for _, pc := range concentration {
		comps := componentsByPerson[pc.Person]
		ratio := 0.0
		if totalComponents > 0 {
			ratio = float64(len(comps)) / float64(totalComponents)
		}
		out = append(out, schema.PersonCoverage{
			Person:          pc.Person,
			ComponentsCount: len(comps),
			TotalComponents: totalComponents,
			Ratio:           schema.Round2(ratio),
			Level:           coverageLevel(ratio),
			Components:      comps,
		})
	}
	return out
}

// computeBusFactor returns the smallest number of top contributors whose
// cumulative share reaches half of all items. A deliberate approximation of
// "how many people, if removed, would take away half the team's throughput".
func computeBusFactor(concentration []schema.PersonConcentration) int {
	totalItems := 0
	for _, pc := range concentration {
		totalItems += pc.Items
	}
	if totalItems == 0 {
		return 0
	}

	cumulative := 0.0
	busFactor := 0
	for _, pc := range concentration {
		cumulative += float64(pc.Items) / float64(totalItems)
		busFactor++
		if cumulative >= 0.5 {
			break
		}
	}
	return busFactor
}

// distributionScore blends the four sub-scores with the given weight table,
// or the named defaults when nil.
func distributionScore(
	concentration []schema.PersonConcentration,
	diversity []schema.PersonDiversity,
	coverage []schema.PersonCoverage,
	busFactor int,
	weights map[schema.Factor]float64,
) float64 {
	if len(concentration) == 0 {
		return 50.0
	}

	var concentrationSum float64
	for _, pc := range concentration {
		concentrationSum += concentrationSubScore(pc.Percentage)
	}
	concentrationScore := concentrationSum / float64(len(concentration))

	diversityScore := 50.0
	if len(diversity) > 0 {
		var sum float64
		for _, pd := range diversity {
			sum += pd.Ratio * 100
		}
		diversityScore = sum / float64(len(diversity))
	}

	coverageScore := 50.0
	if len(coverage) > 0 {
		var sum float64
		for _, pc := range coverage {
			sum += pc.Ratio * 100
		}
		coverageScore = sum / float64(len(coverage))
	}

	busFactorScore := busFactorSubScore(busFactor, len(concentration))

	if weights == nil {
		weights = schema.GetDistributionWeights()
	}
	final := concentrationScore*weights[schema.ConcentrationFactor] +
		diversityScore*weights[schema.DiversityFactor] +
		coverageScore*weights[schema.CoverageFactor] +
		busFactorScore*weights[schema.BusFactorFactor]

	return schema.Round1(final)
}

// concentrationSubScore maps one person's workload percentage (0-100) to a
// sub-score. Lower concentration is healthier.
func concentrationSubScore(percentage float64) float64 {
	switch {
	case percentage <= 20:
		return 100
	case percentage <= 30:
		return 80
	case percentage <= 50:
		return 60
	case percentage <= 70:
		return 30
	default:
		return 10
	}
}

// busFactorSubScore compares the bus factor against team-size fractions.
// Teams of one or two people score 30 regardless: too small to be resilient.
func busFactorSubScore(busFactor, teamSize int) float64 {
	if teamSize <= 2 {
		return 30
	}
	bf := float64(busFactor)
	size := float64(teamSize)
	switch {
	case bf >= size*0.7:
		return 100
	case bf >= size*0.5:
		return 70
	case bf >= size*0.3:
		return 40
	default:
		return 20
	}
}

// identifyRisks emits one classified finding per person exceeding a
// concentration, diversity or coverage threshold.
func identifyRisks(
	concentration []schema.PersonConcentration,
	diversity []schema.PersonDiversity,
	coverage []schema.PersonCoverage,
) []schema.RiskFinding {
	risks := []schema.RiskFinding{}

	for _, pc := range concentration {
		switch {
		case pc.Percentage > 50:
			risks = append(risks, schema.RiskFinding{
				Type:        schema.HighConcentrationRisk,
				Severity:    schema.HighSeverity,
				Person:      pc.Person,
				Description: fmt.Sprintf("%s is responsible for %.1f%% of all items", pc.Person, pc.Percentage),
				Impact:      "Critical risk if this person becomes unavailable",
			})
		case pc.Percentage > 30:
			risks = append(risks, schema.RiskFinding{
				Type:        schema.MediumConcentrationRisk,
				Severity:    schema.MediumSeverity,
				Person:      pc.Person,
				Description: fmt.Sprintf("%s carries a high share of the workload (%.1f%%)", pc.Person, pc.Percentage),
				Impact:      "Potential delivery bottleneck",
			})
		}
	}

	for _, pd := range diversity {
		if pd.Ratio < 0.3 {
			risks = append(risks, schema.RiskFinding{
				Type:        schema.LowDiversityRisk,
				Severity:    schema.MediumSeverity,
				Person:      pd.Person,
				Description: fmt.Sprintf("%s works on few item types (%d of %d)", pd.Person, pd.TypesCount, pd.TotalTypes),
				Impact:      "Limited knowledge may restrict flexibility",
			})
		}
	}

	for _, pc := range coverage {
		if pc.Ratio < 0.2 {
			risks = append(risks, schema.RiskFinding{
				Type:        schema.LowCoverageRisk,
				Severity:    schema.LowSeverity,
				Person:      pc.Person,
				Description: fmt.Sprintf("%s has low component coverage (%d of %d)", pc.Person, pc.ComponentsCount, pc.TotalComponents),
				Impact:      "Excessive specialization can become limiting",
			})
		}
	}

	return risks
}

// maxDistributionRecommendations caps the recommendation list so the
// dashboard stays scannable.
const maxDistributionRecommendations = 6

// buildDistributionRecommendations is rule-based: recommendations are keyed
// off which risk types are present plus a direct bus-factor check, ordered
// by severity (critical concentration first) and capped at six.
func buildDistributionRecommendations(risks []schema.RiskFinding, busFactor int) []string {
	present := make(map[schema.RiskType]bool, len(risks))
	for _, r := range risks {
		present[r.Type] = true
	}

	var recs []string

	if present[schema.HighConcentrationRisk] {
		recs = append(recs,
			"CRITICAL: redistribute work immediately to reduce dependency on one person",
			"Adopt pair programming to transfer knowledge",
			"Document critical processes concentrated in one person",
		)
	}
	if present[schema.MediumConcentrationRisk] {
		recs = append(recs,
			"Balance workload across team members",
			"Rotate responsibilities",
		)
	}
	if present[schema.LowDiversityRisk] {
		recs = append(recs,
			"Run cross-training to broaden knowledge",
			"Pair specialists with generalists to share expertise",
		)
	}
	if busFactor <= 2 {
		recs = append(recs,
			"Bus factor is very low: increase knowledge redundancy",
			"Write detailed technical documentation",
		)
	}
	if len(risks) > 3 {
		recs = append(recs, "Restructure team organization for a better distribution")
	}

	if len(recs) > maxDistributionRecommendations {
		recs = recs[:maxDistributionRecommendations]
	}
	return recs
}

// coverageOverlap returns the share of components touched by more than one
// person. High overlap means knowledge is shared, not siloed.
func coverageOverlap(coverage []schema.PersonCoverage) float64 {
	peoplePerComponent := make(map[string]int)
	for _, pc := range coverage {
		for _, comp := range pc.Components {
			peoplePerComponent[Normalize(comp)]++
		}
	}
	if len(peoplePerComponent) == 0 {
		return 0.0
	}

	overlapping := 0
	for _, people := range peoplePerComponent {
		if people > 1 {
			overlapping++
		}
	}
	return schema.Round2(float64(overlapping) / float64(len(peoplePerComponent)))
}

// concentrationLevel classifies a workload share (0-1).
func concentrationLevel(share float64) schema.Level {
	switch {
	case share > 0.5:
		return schema.CriticalLevel
	case share > 0.3:
		return schema.HighLevel
	case share > 0.2:
		return schema.MediumLevel
	default:
		return schema.LowLevel
	}
}

// concentrationRiskLevel classifies the same share on the looser risk scale.
func concentrationRiskLevel(share float64) schema.Level {
	switch {
	case share > 0.7:
		return schema.CriticalLevel
	case share > 0.5:
		return schema.HighLevel
	case share > 0.3:
		return schema.MediumLevel
	default:
		return schema.LowLevel
	}
}

// diversityLevel classifies a diversity ratio (0-1).
func diversityLevel(ratio float64) schema.Level {
	switch {
	case ratio >= 0.7:
		return schema.HighLevel
	case ratio >= 0.4:
		return schema.MediumLevel
	default:
		return schema.LowLevel
	}
}

// coverageLevel classifies a coverage ratio (0-1).
func coverageLevel(ratio float64) schema.Level {
	switch {
	case ratio >= 0.6:
		return schema.WideLevel
	case ratio >= 0.3:
		return schema.MediumLevel
	default:
		return schema.LimitedLevel
	}
}

// countDistinct counts distinct normalized values of keyFn over the issues,
// skipping blanks.
func countDistinct(issues []schema.Issue, keyFn func(*schema.Issue) string) int {
	seen := make(map[string]struct{})
	for idx := range issues {
		key := Normalize(keyFn(&issues[idx]))
		if key == "" {
			continue
		}
		seen[key] = struct{}{}
	}
	return len(seen)
}
