package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tcandido/sprintlens/core"
	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/internal/jiraclient"
	"github.com/tcandido/sprintlens/internal/outwriter"
)

// metricsCmd prints the consolidated sprint metrics facade.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show the consolidated sprint metrics facade.",
	Long: `Compute the consolidated metrics view of a single sprint.

Sections:
- Executive: item counts by category (stories, tech debt, spikes, bugs, impediments)
- Velocity: points committed vs completed and the completion rate
- Quality: bug and impediment load with a quality score
- Team: items per member and the most loaded person
- Flow: in-progress vs delivered counts and average cycle time

Use this to:
- Produce the numbers a sprint review or retro usually asks for
- Feed a single JSON document to reporting pipelines

Examples:
  # Metrics for sprint 44
  sprintlens metrics --sprints 44

  # Metrics from an offline export as JSON
  sprintlens metrics --input-file sprint44.json --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		sprintID, err := targetSprintID()
		if err != nil {
			contract.LogFatal("Cannot run metrics analysis", err)
		}

		start := time.Now()
		client := jiraclient.SelectClient(cfg)
		analysis, err := core.RunSprintAnalysis(rootCtx, cfg, client, cacheManager, sprintID)
		if err != nil {
			contract.LogFatal("Cannot run metrics analysis", err)
		}

		if err := outwriter.NewOutWriter().WriteMetrics(analysis.Metrics, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Cannot write metrics results", err)
		}
	},
}
