// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/tcandido/sprintlens/internal/contract"
	"github.com/tcandido/sprintlens/internal/jiraclient"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Sprintlens MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Sprintlens Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg:   baseCfg,
		mgr:       mgr,
		newClient: jiraclient.SelectClient,
	}

	// --- 1. Tool: analyze_sprint ---
	s.AddTool(mcp.NewTool("analyze_sprint",
		mcp.WithDescription("Run the full sprint analysis: efficiency score, knowledge distribution, time statistics and metrics."),
		mcp.WithNumber("sprint", mcp.Description("The sprint ID to analyze."), mcp.Required()),
		mcp.WithString("project", mcp.Description("Project key (defaults to the configured project).")),
		mcp.WithNumber("days_per_point", mcp.Description("Story point to days conversion factor. Defaults to the configured value.")),
	), h.handleAnalyzeSprint)

	// --- 2. Tool: get_sprint_efficiency ---
	s.AddTool(mcp.NewTool("get_sprint_efficiency",
		mcp.WithDescription("Compute the composite sprint efficiency score (velocity, quality, predictability, stability)."),
		mcp.WithNumber("sprint", mcp.Description("The sprint ID to analyze."), mcp.Required()),
		mcp.WithNumber("days_per_point", mcp.Description("Story point to days conversion factor.")),
	), h.handleGetSprintEfficiency)

	// --- 3. Tool: get_knowledge_distribution ---
	s.AddTool(mcp.NewTool("get_knowledge_distribution",
		mcp.WithDescription("Analyze how knowledge is distributed across the team: concentration, diversity, coverage, bus factor and risks."),
		mcp.WithNumber("sprint", mcp.Description("The sprint ID to analyze."), mcp.Required()),
	), h.handleGetKnowledgeDistribution)

	// --- 4. Tool: get_time_stats ---
	s.AddTool(mcp.NewTool("get_time_stats",
		mcp.WithDescription("Compute resolution time statistics for a sprint, optionally grouped."),
		mcp.WithNumber("sprint", mcp.Description("The sprint ID to analyze."), mcp.Required()),
		mcp.WithString("group_by", mcp.Description("Optional grouping field."), mcp.Enum("assignee", "type", "component")),
	), h.handleGetTimeStats)

	// --- 5. Tool: run_batch_analysis ---
	s.AddTool(mcp.NewTool("run_batch_analysis",
		mcp.WithDescription("Analyze several sprints concurrently and return their efficiency scores."),
		mcp.WithString("sprints", mcp.Description("Comma-separated sprint IDs, e.g. '44,45,46'."), mcp.Required()),
		mcp.WithNumber("workers", mcp.Description("Number of concurrent workers.")),
	), h.handleRunBatchAnalysis)

	// --- 6. Tool: list_board_sprints ---
	s.AddTool(mcp.NewTool("list_board_sprints",
		mcp.WithDescription("List the sprints of an agile board."),
		mcp.WithNumber("board", mcp.Description("Board ID (defaults to the configured board).")),
	), h.handleListBoardSprints)

	return s
}

// StartMCPServer starts the Sprintlens MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
