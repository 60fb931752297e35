// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/tcandido/sprintlens/schema"
)

// IssueClient defines the operations needed to pull sprint data out of an
// issue tracker. This allows the analysis logic to be tested without a live
// Jira instance, and lets a JSON-file client stand in for offline runs.
type IssueClient interface {
	// GetSprint returns metadata for a single sprint.
	GetSprint(ctx context.Context, sprintID int) (schema.SprintInfo, error)

	// FetchSprintIssues returns every issue assigned to the sprint,
	// following pagination to the end.
	FetchSprintIssues(ctx context.Context, sprintID int) ([]schema.Issue, error)

	// ListBoardSprints returns the sprints of an agile board, newest first.
	ListBoardSprints(ctx context.Context, boardID int) ([]schema.SprintInfo, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetDatasetStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for dataset cache storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Clear() error
	Close() error
}

// AnalysisStore defines the interface for tracking analysis runs and storing
// per-sprint scores.
type AnalysisStore interface {
	// BeginAnalysis creates a new analysis run and returns its unique ID
	BeginAnalysis(startTime time.Time, configParams map[string]any) (int64, error)

	// EndAnalysis updates the analysis run with completion data
	EndAnalysis(analysisID int64, endTime time.Time, totalSprints int) error

	// RecordSprintScores stores the computed scores for one sprint
	RecordSprintScores(analysisID int64, scores schema.SprintScores) error

	// ListSprintScores returns the most recent persisted sprint scores,
	// newest first, up to limit rows (0 means no limit)
	ListSprintScores(limit int) ([]schema.SprintScores, error)

	// ListAnalysisRuns returns every recorded analysis run in insertion order
	ListAnalysisRuns() ([]schema.AnalysisRunRecord, error)

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// Clear removes all analysis history
	Clear() error

	// Close closes the underlying connection
	Close() error
}
