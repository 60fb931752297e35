package core

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/schema"
)

// RunBatchAnalysis fetches and scores many sprints concurrently through a
// bounded worker pool of cfg.Workers goroutines. Per-sprint failures are
// collected into the result, never fatal to the batch; results come back
// ordered by sprint ID regardless of completion order.
func RunBatchAnalysis(ctx context.Context, cfg *contract.Config, client contract.IssueClient, mgr contract.CacheManager) (*schema.BatchResult, error) {
	started := time.Now()
	sprintIDs := cfg.SprintIDs

	// --- 0. Begin Analysis Tracking (if configured) ---
	var analysisID int64
	var analysisStore contract.AnalysisStore
	if mgr != nil {
		analysisStore = mgr.GetAnalysisStore()
	}
	if analysisStore != nil {
		configParams := map[string]any{
			"project":        cfg.ProjectKey,
			"sprints":        len(sprintIDs),
			"days_per_point": cfg.DaysPerPoint,
			"workers":        cfg.Workers,
		}
		var err error
		analysisID, err = analysisStore.BeginAnalysis(started, configParams)
		if err != nil {
			contract.LogWarn("Analysis tracking initialization failed", err)
		}
	}

	// Per-sprint headers would interleave across workers
	workerCtx := WithSuppressHeader(ctx)

	// Initialize channels based on the number of sprints to be processed.
	sprintCh := make(chan int, len(sprintIDs))
	itemCh := make(chan schema.BatchItem, len(sprintIDs))
	var wg sync.WaitGroup

	// Start worker pool
	for range cfg.Workers {
		wg.Go(func() {
			for sprintID := range sprintCh {
				itemCh <- analyzeOneSprint(workerCtx, cfg, client, mgr, analysisStore, analysisID, sprintID)
			}
		})
	}

	// Send sprints to worker channel
	for _, id := range sprintIDs {
		sprintCh <- id
	}
	close(sprintCh)

	// Wait for all workers to finish processing
	wg.Wait()
	close(itemCh)

	result := &schema.BatchResult{Items: make([]schema.BatchItem, 0, len(sprintIDs))}
	for item := range itemCh {
		result.Items = append(result.Items, item)
		if item.Err != nil {
			result.Failed++
			continue
		}
		result.Succeeded++
		result.TotalItems += item.Items
	}

	sort.Slice(result.Items, func(i, j int) bool {
		return result.Items[i].Sprint.ID < result.Items[j].Sprint.ID
	})

	result.Duration = time.Since(started)

	// --- End Analysis Tracking ---
	if analysisStore != nil && analysisID > 0 {
		if err := analysisStore.EndAnalysis(analysisID, time.Now(), result.Succeeded); err != nil {
			contract.LogWarn("Failed to finalize analysis tracking", err)
		}
	}

	return result, nil
}

// analyzeOneSprint fetches and scores a single sprint for the batch. A
// failed fetch still carries the sprint ID so the report can name it.
func analyzeOneSprint(ctx context.Context, cfg *contract.Config, client contract.IssueClient, mgr contract.CacheManager, store contract.AnalysisStore, analysisID int64, sprintID int) schema.BatchItem {
	ds, err := FetchDataset(ctx, cfg, client, mgr, sprintID)
	if err != nil {
		return schema.BatchItem{Sprint: schema.SprintInfo{ID: sprintID}, Err: err}
	}

	analysis := AnalyzeDataset(cfg, ds)

	if store != nil && analysisID > 0 {
		recordSprintAnalysis(store, analysisID, analysis)
	}

	return schema.BatchItem{
		Sprint:     ds.Sprint,
		Items:      ds.Len(),
		Efficiency: analysis.Efficiency,
	}
}
