package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/schema"
)

func TestNewMCPServer(t *testing.T) {
	cfg := &contract.Config{StoreBackend: schema.NoneBackend}
	srv := NewMCPServer(cfg, contract.NewLocalGitClient())
	assert.NotNil(t, srv)
}

func TestCollectWriter(t *testing.T) {
	w := &collectWriter{}
	require.NoError(t, w.Write(&schema.Item{UUID: "a"}))
	require.NoError(t, w.Write(&schema.Item{UUID: "b"}))
	require.NoError(t, w.Close())

	require.Len(t, w.items, 2)
	assert.Equal(t, "a", w.items[0].UUID)
	assert.Equal(t, "b", w.items[1].UUID)
}

func TestHandleListBackends(t *testing.T) {
	h := &toolHandler{baseCfg: &contract.Config{}}

	result, err := h.handleListBackends(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var descs []schema.BackendDescriptor
	require.NoError(t, json.Unmarshal([]byte(text.Text), &descs))
	require.Len(t, descs, 3)
	assert.Equal(t, "cocom", descs[0].Name)
}

func TestHandleAnalyzeCommitsRejectsBadInput(t *testing.T) {
	h := &toolHandler{baseCfg: &contract.Config{}, client: contract.NewLocalGitClient()}

	// Missing repo_uri fails validation before anything touches git.
	result, err := h.handleAnalyzeCommits(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.True(t, result.IsError)
}
