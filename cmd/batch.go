package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tcandido/sprintlens/core"
	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/internal/jiraclient"
	"github.com/tcandido/sprintlens/internal/outwriter"
)

// batchCmd analyzes several sprints concurrently.
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Analyze several sprints concurrently.",
	Long: `Run the full analysis over several sprints with a worker pool.

Sprints come from --sprints, or are discovered from --board when no explicit
list is given. One failing sprint never aborts the batch; its error is
reported alongside the successful results.

Use this to:
- Compare efficiency across the last quarter's sprints
- Backfill analysis history for trend tracking
- Spot sprints that deviate from the team's baseline

Examples:
  # Analyze three sprints with eight workers
  sprintlens batch --sprints 44,45,46 --workers 8

  # Discover and analyze every sprint of a board
  sprintlens batch --board 123

  # Export the per-sprint scores
  sprintlens batch --sprints 44,45,46 --output csv --output-file batch.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		start := time.Now()
		client := jiraclient.SelectClient(cfg)

		if err := resolveBatchSprints(client); err != nil {
			contract.LogFatal("Cannot run batch analysis", err)
		}

		result, err := core.RunBatchAnalysis(rootCtx, cfg, client, cacheManager)
		if err != nil {
			contract.LogFatal("Cannot run batch analysis", err)
		}

		if err := outwriter.NewOutWriter().WriteBatch(result, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Cannot write batch results", err)
		}
	},
}

// resolveBatchSprints fills cfg.SprintIDs from the configured board when no
// explicit sprint list was given.
func resolveBatchSprints(client contract.IssueClient) error {
	if len(cfg.SprintIDs) > 0 {
		return nil
	}
	if cfg.BoardID <= 0 {
		return fmt.Errorf("no sprints specified, use --sprints or --board")
	}

	sprints, err := client.ListBoardSprints(rootCtx, cfg.BoardID)
	if err != nil {
		return fmt.Errorf("failed to list sprints for board %d: %w", cfg.BoardID, err)
	}
	if len(sprints) == 0 {
		return fmt.Errorf("board %d has no sprints", cfg.BoardID)
	}

	ids := make([]int, 0, len(sprints))
	for _, sprint := range sprints {
		ids = append(ids, sprint.ID)
	}
	cfg.SprintIDs = ids
	return nil
}
