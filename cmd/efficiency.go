package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tcandido/sprintlens/core"
	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/internal/jiraclient"
	"github.com/tcandido/sprintlens/internal/outwriter"
)

// efficiencyCmd scores one sprint's delivery efficiency.
var efficiencyCmd = &cobra.Command{
	Use:   "efficiency",
	Short: "Score one sprint's delivery efficiency (0-100).",
	Long: `Compute the weighted efficiency score of a single sprint.

The score blends four dimensions:
- Velocity: share of committed items that were completed
- Quality: bug load relative to sprint size
- Predictability: how close estimates were to actual effort
- Stability: how much scope was added after the sprint started

Dimension weights can be overridden with a 'weights.efficiency' table in
.sprintlens.yaml; the named defaults apply otherwise.

Examples:
  # Score sprint 44
  sprintlens efficiency --sprints 44

  # Score an offline export with a custom point-to-day ratio
  sprintlens efficiency --input-file sprint44.json --days-per-point 1.5

  # Export the breakdown to CSV
  sprintlens efficiency --sprints 44 --output csv --output-file efficiency.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		sprintID, err := targetSprintID()
		if err != nil {
			contract.LogFatal("Cannot run efficiency analysis", err)
		}

		start := time.Now()
		client := jiraclient.SelectClient(cfg)
		analysis, err := core.RunSprintAnalysis(rootCtx, cfg, client, cacheManager, sprintID)
		if err != nil {
			contract.LogFatal("Cannot run efficiency analysis", err)
		}

		if err := outwriter.NewOutWriter().WriteEfficiency(analysis.Dataset.Sprint, analysis.Efficiency, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Cannot write efficiency results", err)
		}
	},
}
