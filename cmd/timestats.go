package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tcandido/sprintlens/core"
	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/internal/jiraclient"
	"github.com/tcandido/sprintlens/internal/outwriter"
	"github.com/tcandido/sprintlens/schema"
)

// timestatsCmd reports resolution time statistics for one sprint.
var timestatsCmd = &cobra.Command{
	Use:   "timestats",
	Short: "Show resolution time statistics for one sprint.",
	Long: `Compute resolution time statistics over a sprint's resolved items.

Reports mean, median, 85th percentile, minimum and maximum resolution days.
Items without both created and resolved timestamps are excluded.

With --group-by, also breaks down mean resolution time per assignee, item
type or component.

Examples:
  # Overall statistics for sprint 44
  sprintlens timestats --sprints 44

  # Per-assignee breakdown
  sprintlens timestats --sprints 44 --group-by assignee

  # Per-type breakdown of an offline export
  sprintlens timestats --input-file sprint44.json --group-by type`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		sprintID, err := targetSprintID()
		if err != nil {
			contract.LogFatal("Cannot run timestats analysis", err)
		}

		start := time.Now()
		client := jiraclient.SelectClient(cfg)
		analysis, err := core.RunSprintAnalysis(rootCtx, cfg, client, cacheManager, sprintID)
		if err != nil {
			contract.LogFatal("Cannot run timestats analysis", err)
		}

		var groups []schema.GroupTimeStats
		if cfg.GroupBy != "" {
			groups = core.GroupedTimeStats(analysis.Dataset, core.GroupKeyFunc(cfg.GroupBy))
		}

		if err := outwriter.NewOutWriter().WriteTimeStats(analysis.Dataset.Sprint, analysis.TimeStats, groups, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Cannot write timestats results", err)
		}
	},
}
