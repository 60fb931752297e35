package schema

// ExecutiveSummary counts items by canonical type, restricted to the fixed
// interest set (stories, technical debt, spikes, bugs, impediments).
type ExecutiveSummary struct {
	TotalItems   int            `json:"total_items"`
	Stories      int            `json:"stories"`
	TechDebt     int            `json:"tech_debt"`
	Spikes       int            `json:"spikes"`
	Bugs         int            `json:"bugs"`
	Impediments  int            `json:"impediments"`
	CountsByType map[string]int `json:"counts_by_type"`
}

// VelocityMetrics aggregates story points over the story-point-bearing
// canonical types.
type VelocityMetrics struct {
	TotalStoryPoints     float64 `json:"total_story_points"`
	CompletedStoryPoints float64 `json:"completed_story_points"`
	CompletionRate       float64 `json:"completion_rate"`
	EstimatedItems       int     `json:"estimated_items"`
	AverageStoryPoints   float64 `json:"average_story_points"`
}

// QualityMetrics holds defect and impediment rates plus a simple derived
// quality score floored at zero.
type QualityMetrics struct {
	TotalBugs      int     `json:"total_bugs"`
	TotalImpedims  int     `json:"total_impediments"`
	BugRate        float64 `json:"bug_rate"`
	ImpedimentRate float64 `json:"impediment_rate"`
	QualityScore   float64 `json:"quality_score"`
}

// TeamMetrics holds the per-person workload split over raw assignee values.
// Identity cleaning is the knowledge engine's concern, not this read-only
// composition layer's.
type TeamMetrics struct {
	TotalMembers     int                `json:"total_members"`
	ItemsPerMember   map[string]int     `json:"items_per_member"`
	WorkloadPercent  map[string]float64 `json:"workload_percent"`
	MostLoadedMember string             `json:"most_loaded_member,omitempty"`
	MaxItems         int                `json:"max_items"`
}

// FlowMetrics holds kanban-style flow indicators.
type FlowMetrics struct {
	WIPCount         int       `json:"wip_count"`
	ThroughputCount  int       `json:"throughput_count"`
	AverageCycleTime float64   `json:"average_cycle_time"`
	CycleTimes       []float64 `json:"cycle_time_distribution,omitempty"`
}

// SprintMetrics is the facade aggregate over one dataset.
type SprintMetrics struct {
	Sprint    SprintInfo       `json:"sprint"`
	Executive ExecutiveSummary `json:"executive"`
	Velocity  VelocityMetrics  `json:"velocity"`
	Quality   QualityMetrics   `json:"quality"`
	Team      TeamMetrics      `json:"team"`
	Flow      FlowMetrics      `json:"flow"`
}
