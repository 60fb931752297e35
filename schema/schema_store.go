package schema

import "time"

// AnalysisRunRecord represents a row from the sprintlens_analysis_runs table.
type AnalysisRunRecord struct {
	AnalysisID     int64
	StartTime      time.Time
	EndTime        *time.Time
	RunDurationMs  *int32
	TotalSprints   int32
	ConfigParams   *string
}

// SprintScores represents the computed scores persisted for a single sprint
// within an analysis run.
type SprintScores struct {
	AnalysisTime        time.Time
	SprintID            int
	SprintName          string
	TotalItems          int
	CompletedItems      int
	EfficiencyScore     float64
	VelocityScore       float64
	QualityScore        float64
	PredictabilityScore float64
	StabilityScore      float64
	Classification      string
	DistributionScore   float64
	BusFactor           int
	TeamHealth          string
}

// CacheStatus holds status information about the dataset cache store.
type CacheStatus struct {
	Backend         DatabaseBackend
	Connected       bool
	TotalEntries    int64
	LastEntryTime   time.Time
	OldestEntryTime time.Time
	TableSizeBytes  int64
}

// AnalysisStatus holds status information about the analysis history store.
type AnalysisStatus struct {
	Backend            DatabaseBackend
	Connected          bool
	TotalRuns          int64
	LastRunID          int64
	LastRunTime        time.Time
	OldestRunTime      time.Time
	TotalSprintsScored int64
	TableSizes         map[string]int64
}

/// BatchItem is the outcome for one sprint in a batch analysis: either a
// result or an error, never both.
type BatchItem struct {
	Sprint     SprintInfo
	Items      int
	Efficiency *ScoreResult
	Err        error
}

// BatchResult aggregates the outcomes of a multi-sprint batch run.
type BatchResult struct {
	Items      []BatchItem
	Succeeded  int
	Failed     int
	TotalItems int
	Duration   time.Duration
}
