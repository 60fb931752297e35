// Package parquet provides data structures and functions for exporting sprint
// analysis data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/tcandido/sprintlens/schema"
)

// AnalysisRun represents a single analysis run with metadata.
// This struct maps to the sprintlens_analysis_runs database table.
type AnalysisRun struct {
	// AnalysisID is the unique identifier for this analysis run
	AnalysisID int64 `parquet:"analysis_id,snappy"`

	// StartTime is when the analysis began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the analysis completed (nullable, stored as TIMESTAMP with nanosecond precision)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the analysis run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalSprints is the number of sprints scored in this run
	TotalSprints int32 `parquet:"total_sprints_analyzed,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// SprintScores represents the persisted scores for a single sprint.
// This struct maps to the sprintlens_sprint_scores database table.
type SprintScores struct {
	// SprintID is the tracker's sprint identifier
	SprintID int32 `parquet:"sprint_id,snappy"`

	// SprintName is the sprint's display name
	SprintName string `parquet:"sprint_name,snappy"`

	// AnalysisTime is when this sprint was scored (stored as TIMESTAMP with nanosecond precision)
	AnalysisTime time.Time `parquet:"analysis_time,snappy"`

	// TotalItems is the number of issues in the sprint
	TotalItems int32 `parquet:"total_items,snappy"`

	// CompletedItems is the number of resolved issues in the sprint
	CompletedItems int32 `parquet:"completed_items,snappy"`

	// EfficiencyScore is the weighted final efficiency score
	EfficiencyScore float64 `parquet:"score_efficiency,snappy"`

	// VelocityScore is the velocity dimension score
	VelocityScore float64 `parquet:"score_velocity,snappy"`

	// QualityScore is the quality dimension score
	QualityScore float64 `parquet:"score_quality,snappy"`

	// PredictabilityScore is the predictability dimension score
	PredictabilityScore float64 `parquet:"score_predictability,snappy"`

	// StabilityScore is the stability dimension score
	StabilityScore float64 `parquet:"score_stability,snappy"`

	// Classification is the qualitative efficiency label
	Classification string `parquet:"classification,snappy"`

	// DistributionScore is the knowledge distribution score
	DistributionScore float64 `parquet:"score_distribution,snappy"`

	// BusFactor is the number of people holding half the sprint's work
	BusFactor int32 `parquet:"bus_factor,snappy"`

	// TeamHealth is the qualitative team-health verdict
	TeamHealth string `parquet:"team_health,snappy"`
}

// WriteAnalysisRunsParquet writes a slice of AnalysisRun structs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the AnalysisRun struct tags
	writer := parquet.NewGenericWriter[AnalysisRun](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteSprintScoresParquet writes a slice of SprintScores structs to a Parquet file.
func WriteSprintScoresParquet(data []SprintScores, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the SprintScores struct tags
	writer := parquet.NewGenericWriter[SprintScores](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertAnalysisRunRecords converts schema.AnalysisRunRecord to AnalysisRun for Parquet export.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		result[i] = AnalysisRun{
			AnalysisID:    record.AnalysisID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalSprints:  record.TotalSprints,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertSprintScores converts schema.SprintScores to SprintScores for Parquet export.
func ConvertSprintScores(records []schema.SprintScores) []SprintScores {
	result := make([]SprintScores, len(records))
	for i, record := range records {
		result[i] = SprintScores{
			SprintID:            int32(record.SprintID),
			SprintName:          record.SprintName,
			AnalysisTime:        record.AnalysisTime,
			TotalItems:          int32(record.TotalItems),
			CompletedItems:      int32(record.CompletedItems),
			EfficiencyScore:     record.EfficiencyScore,
			VelocityScore:       record.VelocityScore,
			QualityScore:        record.QualityScore,
			PredictabilityScore: record.PredictabilityScore,
			StabilityScore:      record.StabilityScore,
			Classification:      record.Classification,
			DistributionScore:   record.DistributionScore,
			BusFactor:           int32(record.BusFactor),
			TeamHealth:          record.TeamHealth,
		}
	}
	return result
}
