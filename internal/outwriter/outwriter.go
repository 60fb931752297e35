// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/tcandido/sprintlens/core"
	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the command layer.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteSummary prints the combined sprint analysis using the configured output format.
func (ow *OutWriter) WriteSummary(analysis *core.SprintAnalysis, cfg *contract.Config, duration time.Duration) error {
	return PrintSummaryResults(analysis, cfg, duration)
}

// WriteEfficiency prints the sprint efficiency score using the configured output format.
func (ow *OutWriter) WriteEfficiency(sprint schema.SprintInfo, result *schema.ScoreResult, cfg *contract.Config, duration time.Duration) error {
	return PrintEfficiencyResults(sprint, result, cfg, duration)
}

// WriteKnowledge prints the knowledge distribution analysis using the configured output format.
func (ow *OutWriter) WriteKnowledge(sprint schema.SprintInfo, result *schema.DistributionResult, cfg *contract.Config, duration time.Duration) error {
	return PrintKnowledgeResults(sprint, result, cfg, duration)
}

// WriteTimeStats prints resolution time statistics using the configured output format.
func (ow *OutWriter) WriteTimeStats(sprint schema.SprintInfo, stats schema.TimeStats, groups []schema.GroupTimeStats, cfg *contract.Config, duration time.Duration) error {
	return PrintTimeStatsResults(sprint, stats, groups, cfg, duration)
}

// WriteBatch prints multi-sprint batch results using the configured output format.
func (ow *OutWriter) WriteBatch(result *schema.BatchResult, cfg *contract.Config, duration time.Duration) error {
	return PrintBatchResults(result, cfg, duration)
}

// WriteMetrics prints the sprint metrics facade using the configured output format.
func (ow *OutWriter) WriteMetrics(metrics *schema.SprintMetrics, cfg *contract.Config, duration time.Duration) error {
	return PrintMetricsResults(metrics, cfg, duration)
}
