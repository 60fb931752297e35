package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tcandido/sprintlens/core"
	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/internal/jiraclient"
	"github.com/tcandido/sprintlens/internal/outwriter"
)

// knowledgeCmd analyzes how sprint work concentrates on individual people.
var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Analyze knowledge concentration and bus factor.",
	Long: `Quantify how concentrated the sprint's knowledge and workload are.

Reports:
- Per-person concentration with risk levels
- Bus factor: the fewest people holding half the sprint's work
- Task-type diversity and component coverage per person
- Classified risks with recommendations
- An aggregate distribution score and team health assessment

Use this to:
- Spot knowledge silos before they become single points of failure
- Balance assignment across the team in the next planning
- Track bus factor evolution across sprints

Examples:
  # Analyze sprint 44
  sprintlens knowledge --sprints 44

  # Analyze an offline export
  sprintlens knowledge --input-file sprint44.json

  # Export concentration rows for tracking
  sprintlens knowledge --sprints 44 --output csv --output-file knowledge.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		sprintID, err := targetSprintID()
		if err != nil {
			contract.LogFatal("Cannot run knowledge analysis", err)
		}

		start := time.Now()
		client := jiraclient.SelectClient(cfg)
		analysis, err := core.RunSprintAnalysis(rootCtx, cfg, client, cacheManager, sprintID)
		if err != nil {
			contract.LogFatal("Cannot run knowledge analysis", err)
		}

		if err := outwriter.NewOutWriter().WriteKnowledge(analysis.Dataset.Sprint, analysis.Distribution, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Cannot write knowledge results", err)
		}
	},
}
