package iocache

import (
	"errors"
	"fmt"

	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/internal/parquet"
)

// ExecuteAnalysisExport exports the analysis history of a store to Parquet files.
func ExecuteAnalysisExport(store contract.AnalysisStore, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("analysis tracking is not configured")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total analysis runs: %d\n", status.TotalRuns)
	fmt.Printf("Total sprint score records: %d\n", status.TableSizes[sprintScoresTable])

	// Retrieve all analysis runs
	analysisRuns, err := store.ListAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}

	// Retrieve all sprint scores
	sprintScores, err := store.ListSprintScores(0)
	if err != nil {
		return fmt.Errorf("failed to retrieve sprint scores: %w", err)
	}

	// Convert to Parquet format
	parquetAnalysisRuns := parquet.ConvertAnalysisRunRecords(analysisRuns)
	parquetSprintScores := parquet.ConvertSprintScores(sprintScores)

	// Write analysis runs to Parquet
	analysisRunsFile := outputFile + ".analysis_runs.parquet"
	if err := parquet.WriteAnalysisRunsParquet(parquetAnalysisRuns, analysisRunsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	fmt.Printf("Exported %d analysis runs to: %s\n", len(parquetAnalysisRuns), analysisRunsFile)

	// Write sprint scores to Parquet
	sprintScoresFile := outputFile + ".sprint_scores.parquet"
	if err := parquet.WriteSprintScoresParquet(parquetSprintScores, sprintScoresFile); err != nil {
		return fmt.Errorf("failed to write sprint scores: %w", err)
	}
	fmt.Printf("Exported %d sprint score records to: %s\n", len(parquetSprintScores), sprintScoresFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
