package schema

// PersonConcentration describes one person's share of the team's workload.
// Percentage is expressed in [0, 100]. ConcentrationLevel and RiskLevel are
// two independent scales over the same percentage; the risk thresholds are
// intentionally looser.
type PersonConcentration struct {
	Person             string  `json:"person"`
	Items              int     `json:"items"`
	Percentage         float64 `json:"percentage"`
	ConcentrationLevel Level   `json:"concentration_level"`
	RiskLevel          Level   `json:"risk_level"`
}

// PersonDiversity describes how many of the dataset's distinct item types one
// person has handled.
type PersonDiversity struct {
	Person     string   `json:"person"`
	TypesCount int      `json:"types_count"`
	TotalTypes int      `json:"total_types"`
	Ratio      float64  `json:"ratio"`
	Level      Level    `json:"level"`
	Types      []string `json:"types,omitempty"`
}

// PersonCoverage describes how many of the dataset's distinct components one
// person has touched. When no component field is populated, the item type is
// used as a proxy.
type PersonCoverage struct {
	Person          string   `json:"person"`
	ComponentsCount int      `json:"components_count"`
	TotalComponents int      `json:"total_components"`
	Ratio           float64  `json:"ratio"`
	Level           Level    `json:"level"`
	Components      []string `json:"components,omitempty"`
}

// RiskFinding is one classified risk surfaced by the knowledge engine.
type RiskFinding struct {
	Type        RiskType `json:"type"`
	Severity    Severity `json:"severity"`
	Person      string   `json:"person"`
	Description string   `json:"description"`
	Impact      string   `json:"impact"`
}

// DistributionMetrics summarizes the cleaned dataset behind a
// DistributionResult.
type DistributionMetrics struct {
	TotalPeople     int            `json:"total_people"`
	ItemsPerPerson  map[string]int `json:"items_per_person"`
	KnowledgeAreas  int            `json:"knowledge_areas"`
	CoverageOverlap float64        `json:"coverage_overlap"`
}

// DistributionResult is the full knowledge-distribution analysis for one
// dataset. Concentration is sorted by descending item count so the bus
// factor can be read off the first BusFactor entries.
type DistributionResult struct {
	Score           float64               `json:"distribution_score"`
	BusFactor       int                   `json:"bus_factor"`
	Concentration   []PersonConcentration `json:"work_concentration"`
	Diversity       []PersonDiversity     `json:"task_diversity"`
	Coverage        []PersonCoverage      `json:"component_coverage"`
	Risks           []RiskFinding         `json:"risks"`
	Recommendations []string              `json:"recommendations"`
	TeamHealth      HealthLabel           `json:"team_health"`
	Metrics         DistributionMetrics   `json:"metrics"`
}

// DefaultDistributionResult is returned when no person survives assignee
// cleaning, or when the engine fails internally. Score 50 is deliberately
// neutral and the bus factor is pinned at 1 so downstream consumers never
// divide by zero.
func DefaultDistributionResult() *DistributionResult {
	return &DistributionResult{
		Score:           50.0,
		BusFactor:       1,
		Concentration:   []PersonConcentration{},
		Diversity:       []PersonDiversity{},
		Coverage:        []PersonCoverage{},
		Risks:           []RiskFinding{},
		Recommendations: []string{"Insufficient data for a distribution analysis"},
		TeamHealth:      IndeterminateHealth,
		Metrics: DistributionMetrics{
			ItemsPerPerson: map[string]int{},
		},
	}
}
