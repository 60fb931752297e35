package core

import (
	"context"
	"fmt"
	"time"

	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/schema"
)

// SprintAnalysis bundles every derived result for one sprint dataset.
type SprintAnalysis struct {
	Dataset      *schema.Dataset
	Efficiency   *schema.ScoreResult
	Distribution *schema.DistributionResult
	TimeStats    schema.TimeStats
	Metrics      *schema.SprintMetrics
}

// AnalyzeDataset runs every engine over one dataset snapshot. Pure: no I/O,
// no shared state, safe to call from batch workers.
func AnalyzeDataset(cfg *contract.Config, ds *schema.Dataset) *SprintAnalysis {
	return &SprintAnalysis{
		Dataset:      ds,
		Efficiency:   ComputeEfficiencyWeighted(ds, cfg.DaysPerPoint, cfg.ComputedEfficiencyWeights),
		Distribution: ComputeDistributionWeighted(ds, cfg.ComputedDistributionWeights),
		TimeStats:    ComputeTimeStats(ds),
		Metrics:      ComputeMetrics(ds),
	}
}

// RunSprintAnalysis fetches one sprint (cache-aware) and computes the full
// analysis. When an analysis store is configured the run and its scores are
// recorded; tracking failures are warnings, never fatal.
func RunSprintAnalysis(ctx context.Context, cfg *contract.Config, client contract.IssueClient, mgr contract.CacheManager, sprintID int) (*SprintAnalysis, error) {
	if !shouldSuppressHeader(ctx) {
		logAnalysisHeader(cfg, sprintID)
	}

	// --- 0. Begin Analysis Tracking (if configured) ---
	var analysisID int64
	var analysisStore contract.AnalysisStore
	if mgr != nil {
		analysisStore = mgr.GetAnalysisStore()
	}
	if analysisStore != nil {
		startTime := time.Now()
		configParams := map[string]any{
			"project":        cfg.ProjectKey,
			"sprint":         sprintID,
			"days_per_point": cfg.DaysPerPoint,
			"workers":        cfg.Workers,
		}
		var err error
		analysisID, err = analysisStore.BeginAnalysis(startTime, configParams)
		if err != nil {
			contract.LogWarn("Analysis tracking initialization failed", err)
		} else if analysisID > 0 {
			ctx = withAnalysisID(ctx, analysisID)
		}
	}

	// --- 1. Fetch Phase (with caching) ---
	ds, err := FetchDataset(ctx, cfg, client, mgr, sprintID)
	if err != nil {
		return nil, err
	}

	// --- 2. Core Analysis ---
	analysis := AnalyzeDataset(cfg, ds)

	// --- 3. Record Scores ---
	if analysisStore != nil && analysisID > 0 {
		recordSprintAnalysis(analysisStore, analysisID, analysis)
	}

	// --- 4. End Analysis Tracking ---
	if analysisStore != nil && analysisID > 0 {
		if err := analysisStore.EndAnalysis(analysisID, time.Now(), 1); err != nil {
			contract.LogWarn("Failed to finalize analysis tracking", err)
		}
	}

	return analysis, nil
}

// recordSprintAnalysis persists one sprint's scores into the analysis store.
func recordSprintAnalysis(store contract.AnalysisStore, analysisID int64, analysis *SprintAnalysis) {
	scores := BuildSprintScores(analysis)
	if err := store.RecordSprintScores(analysisID, scores); err != nil {
		contract.LogWarn(fmt.Sprintf("Analysis tracking failed for sprint %d", scores.SprintID), err)
	}
}

// BuildSprintScores flattens an analysis into the persisted score row.
func BuildSprintScores(analysis *SprintAnalysis) schema.SprintScores {
	eff := analysis.Efficiency
	dist := analysis.Distribution

	return schema.SprintScores{
		AnalysisTime:        time.Now(),
		SprintID:            analysis.Dataset.Sprint.ID,
		SprintName:          analysis.Dataset.Sprint.Name,
		TotalItems:          analysis.Dataset.Len(),
		CompletedItems:      analysis.Dataset.CompletedCount(),
		EfficiencyScore:     eff.FinalScore,
		VelocityScore:       eff.Components[schema.VelocityDim].Score,
		QualityScore:        eff.Components[schema.QualityDim].Score,
		PredictabilityScore: eff.Components[schema.PredictabilityDim].Score,
		StabilityScore:      eff.Components[schema.StabilityDim].Score,
		Classification:      eff.Classification,
		DistributionScore:   dist.Score,
		BusFactor:           dist.BusFactor,
		TeamHealth:          string(dist.TeamHealth),
	}
}

// logAnalysisHeader prints a one-line banner before a sprint analysis run.
func logAnalysisHeader(cfg *contract.Config, sprintID int) {
	source := cfg.JiraBaseURL
	if cfg.InputFile != "" {
		source = cfg.InputFile
	}
	if cfg.UseEmojis {
		fmt.Printf("🔍 Analyzing sprint %d from %s...\n", sprintID, source)
	} else {
		fmt.Printf("Analyzing sprint %d from %s...\n", sprintID, source)
	}
}
