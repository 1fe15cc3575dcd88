package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codetrawl/codetrawl/core"
	"github.com/codetrawl/codetrawl/internal/backend"
	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/internal/runstore"
	"github.com/codetrawl/codetrawl/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	client  contract.GitClient
}

// collectWriter buffers emitted items in memory so a tool call can return
// them as a single JSON payload.
type collectWriter struct {
	items []*schema.Item
}

var _ contract.ItemWriter = &collectWriter{} // Compile-time check

func (w *collectWriter) Write(item *schema.Item) error {
	w.items = append(w.items, item)
	return nil
}

func (w *collectWriter) Close() error { return nil }

func (h *toolHandler) handleAnalyzeCommits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uri := request.GetString("repo_uri", "")
	backendName := request.GetString("backend", contract.DefaultBackend)

	raw := contract.ConfigRawInput{
		Paths:      request.GetString("paths", ""),
		Entrypoint: request.GetString("entrypoint", ""),
	}
	cfg := h.baseCfg.Clone()
	if err := contract.ProcessAndValidate(cfg, &raw, backendName, uri); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	cfg.Limit = request.GetInt("limit", contract.DefaultMCPLimit)

	b, err := backend.New(cfg.Backend, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("backend setup failed: %v", err)), nil
	}

	writer := &collectWriter{}
	if _, err := core.ExecuteRun(ctx, cfg, h.client, b, nil, writer); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(writer.items, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListBackends(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonData, _ := json.MarshalIndent(backend.Descriptors(), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleRecentRuns(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 10)

	store, err := runstore.New(h.baseCfg.StoreBackend, h.baseCfg.StoreConnect)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run store unavailable: %v", err)), nil
	}
	defer func() { _ = store.Close() }()

	runs, err := store.RecentRuns(limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(runs, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
