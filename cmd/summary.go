package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tcandido/sprintlens/core"
	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/internal/jiraclient"
	"github.com/tcandido/sprintlens/internal/outwriter"
)

// summaryCmd runs every engine over one sprint and prints a combined report.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the combined analysis for one sprint.",
	Long: `Run every analysis engine over a single sprint and print one report.

Combines in one pass:
- Efficiency score across velocity, quality, predictability and stability
- Knowledge distribution with bus factor and per-person concentration
- Resolution time statistics for resolved items
- The sprint metrics facade (executive, velocity, quality, team, flow)

Use this to:
- Get a quick health check of a sprint during or after its run
- Feed one consolidated JSON document to dashboards

Examples:
  # Summarize a live sprint
  sprintlens summary --jira-url https://company.atlassian.net --jira-user me@company.com --sprints 44

  # Summarize an offline export
  sprintlens summary --input-file sprint44.json

  # Machine-readable output
  sprintlens summary --sprints 44 --output json --output-file sprint44-summary.json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		sprintID, err := targetSprintID()
		if err != nil {
			contract.LogFatal("Cannot run summary analysis", err)
		}

		start := time.Now()
		client := jiraclient.SelectClient(cfg)
		analysis, err := core.RunSprintAnalysis(rootCtx, cfg, client, cacheManager, sprintID)
		if err != nil {
			contract.LogFatal("Cannot run summary analysis", err)
		}

		if err := outwriter.NewOutWriter().WriteSummary(analysis, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Cannot write summary results", err)
		}
	},
}
