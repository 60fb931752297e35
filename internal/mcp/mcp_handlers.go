package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tcandido/sprintlens/core"
	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
// newClient is injectable so tests can avoid real HTTP clients.
type toolHandler struct {
	baseCfg   *contract.Config
	mgr       contract.CacheManager
	newClient func(cfg *contract.Config) contract.IssueClient
}

// sprintConfig clones the base config scoped to the requested sprint and
// applies the common per-call overrides.
func (h *toolHandler) sprintConfig(request mcp.CallToolRequest) (*contract.Config, int, error) {
	sprintID := request.GetInt("sprint", 0)
	if sprintID <= 0 {
		return nil, 0, fmt.Errorf("sprint must be a positive sprint ID")
	}

	cfg := h.baseCfg.CloneWithSprint(sprintID)
	if p := request.GetString("project", ""); p != "" {
		cfg.ProjectKey = p
	}
	if d := request.GetFloat("days_per_point", 0); d > 0 {
		cfg.DaysPerPoint = d
	}
	return cfg, sprintID, nil
}

func (h *toolHandler) handleAnalyzeSprint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, sprintID, err := h.sprintConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	analysis, err := core.RunSprintAnalysis(core.WithSuppressHeader(ctx), cfg, h.newClient(cfg), h.mgr, sprintID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	payload := struct {
		Sprint       schema.SprintInfo          `json:"sprint"`
		Efficiency   *schema.ScoreResult        `json:"efficiency"`
		Distribution *schema.DistributionResult `json:"distribution"`
		TimeStats    schema.TimeStats           `json:"time_stats"`
		Metrics      *schema.SprintMetrics      `json:"metrics"`
	}{
		Sprint:       analysis.Dataset.Sprint,
		Efficiency:   analysis.Efficiency,
		Distribution: analysis.Distribution,
		TimeStats:    analysis.TimeStats,
		Metrics:      analysis.Metrics,
	}
	jsonData, _ := json.MarshalIndent(payload, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetSprintEfficiency(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, sprintID, err := h.sprintConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ds, err := core.FetchDataset(ctx, cfg, h.newClient(cfg), h.mgr, sprintID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetch failed: %v", err)), nil
	}

	result := core.ComputeEfficiency(ds, cfg.DaysPerPoint)
	jsonData, _ := json.MarshalIndent(result, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetKnowledgeDistribution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, sprintID, err := h.sprintConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ds, err := core.FetchDataset(ctx, cfg, h.newClient(cfg), h.mgr, sprintID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetch failed: %v", err)), nil
	}

	result := core.ComputeDistribution(ds)
	jsonData, _ := json.MarshalIndent(result, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetTimeStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, sprintID, err := h.sprintConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	groupBy := request.GetString("group_by", "")
	switch groupBy {
	case "", "assignee", "type", "component":
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid group_by '%s', expected assignee, type or component", groupBy)), nil
	}

	ds, err := core.FetchDataset(ctx, cfg, h.newClient(cfg), h.mgr, sprintID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetch failed: %v", err)), nil
	}

	payload := struct {
		Stats  schema.TimeStats        `json:"time_stats"`
		Groups []schema.GroupTimeStats `json:"groups,omitempty"`
	}{
		Stats: core.ComputeTimeStats(ds),
	}
	if groupBy != "" {
		payload.Groups = core.GroupedTimeStats(ds, core.GroupKeyFunc(groupBy))
	}
	jsonData, _ := json.MarshalIndent(payload, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleRunBatchAnalysis(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := contract.ParseSprintIDs(request.GetString("sprints", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid sprint list: %v", err)), nil
	}
	if len(ids) == 0 {
		return mcp.NewToolResultError("sprints must name at least one sprint ID"), nil
	}

	cfg := h.baseCfg.Clone()
	cfg.SprintIDs = ids
	if w := request.GetInt("workers", 0); w > 0 {
		cfg.Workers = w
	}

	result, err := core.RunBatchAnalysis(core.WithSuppressHeader(ctx), cfg, h.newClient(cfg), h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("batch analysis failed: %v", err)), nil
	}

	type batchItem struct {
		Sprint     schema.SprintInfo   `json:"sprint"`
		Items      int                 `json:"items"`
		Efficiency *schema.ScoreResult `json:"efficiency,omitempty"`
		Error      string              `json:"error,omitempty"`
	}
	items := make([]batchItem, len(result.Items))
	for i, item := range result.Items {
		items[i] = batchItem{Sprint: item.Sprint, Items: item.Items, Efficiency: item.Efficiency}
		if item.Err != nil {
			items[i].Error = item.Err.Error()
		}
	}
	payload := struct {
		Items      []batchItem `json:"items"`
		Succeeded  int         `json:"succeeded"`
		Failed     int         `json:"failed"`
		TotalItems int         `json:"total_items"`
	}{
		Items:      items,
		Succeeded:  result.Succeeded,
		Failed:     result.Failed,
		TotalItems: result.TotalItems,
	}
	jsonData, _ := json.MarshalIndent(payload, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListBoardSprints(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	boardID := request.GetInt("board", cfg.BoardID)
	if boardID <= 0 {
		return mcp.NewToolResultError("board must be a positive board ID"), nil
	}

	sprints, err := h.newClient(cfg).ListBoardSprints(ctx, boardID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(sprints, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
