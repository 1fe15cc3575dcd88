// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/schema"
)

// NewMCPServer initializes and configures the Codetrawl MCP server without
// starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, client contract.GitClient) *server.MCPServer {
	s := server.NewMCPServer(
		"Codetrawl Analysis Server",
		schema.CoreVersion,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		client:  client,
	}

	// --- 1. Tool: analyze_commits ---
	s.AddTool(mcp.NewTool("analyze_commits",
		mcp.WithDescription("Analyze the commit history of a git repository, producing per-commit code metrics."),
		mcp.WithString("repo_uri", mcp.Description("URI or local path of the git repository to analyze."), mcp.Required()),
		mcp.WithString("backend", mcp.Description("Analysis backend (cocom, count, coqua). Defaults to 'cocom'."), mcp.Enum("cocom", "count", "coqua")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of commits to analyze. Defaults to 50.")),
		mcp.WithString("paths", mcp.Description("Comma-separated path suffixes to restrict the analysis to.")),
		mcp.WithString("entrypoint", mcp.Description("Module entrypoint, required by the coqua backend.")),
	), h.handleAnalyzeCommits)

	// --- 2. Tool: list_backends ---
	s.AddTool(mcp.NewTool("list_backends",
		mcp.WithDescription("List the available analysis backends with their versions and item categories."),
	), h.handleListBackends)

	// --- 3. Tool: recent_runs ---
	s.AddTool(mcp.NewTool("recent_runs",
		mcp.WithDescription("Show recently tracked analysis runs from the run store."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of runs to return. Defaults to 10.")),
	), h.handleRecentRuns)

	return s
}

// StartMCPServer starts the Codetrawl MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, client contract.GitClient) error {
	s := NewMCPServer(baseCfg, client)
	return server.ServeStdio(s)
}
