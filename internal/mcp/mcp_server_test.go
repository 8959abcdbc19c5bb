package mcp_test

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mozdata/probescraper/internal/contract"
	mcp_internal "github.com/mozdata/probescraper/internal/mcp"
	"github.com/mozdata/probescraper/internal/outwriter"
	"github.com/mozdata/probescraper/schema"
)

// publishFixture writes one repository's artifacts for the tools to read.
func publishFixture(t *testing.T) *contract.Config {
	t.Helper()
	cfg := &contract.Config{OutputDir: t.TempDir()}

	histories := map[schema.ItemKind]map[string]*schema.ItemHistory{
		schema.MetricsKind: {
			"browser.clicks": {
				Name:     "browser.clicks",
				InSource: true,
				History: []*schema.HistoryEntry{
					{
						Fields: schema.Definition{"type": "counter", "description": "Counts clicks."},
						First:  schema.Commit{Hash: "aaa", Timestamp: 1000, ReflogIndex: 1},
						Last:   schema.Commit{Hash: "bbb", Timestamp: 2000, ReflogIndex: 0},
					},
					{
						Fields: schema.Definition{"type": "counter", "description": "Counts clicks precisely."},
						First:  schema.Commit{Hash: "ccc", Timestamp: 3000, ReflogIndex: 0},
						Last:   schema.Commit{Hash: "ccc", Timestamp: 3000, ReflogIndex: 0},
					},
				},
			},
			"app.removed": {
				Name:     "app.removed",
				InSource: false,
				History: []*schema.HistoryEntry{
					{
						Fields: schema.Definition{"type": "event"},
						First:  schema.Commit{Hash: "ddd", Timestamp: 500},
						Last:   schema.Commit{Hash: "ddd", Timestamp: 500},
					},
				},
			},
		},
	}

	ow := outwriter.NewOutWriter()
	repo := schema.Repository{Name: "fenix", Dependencies: []string{"glean-core"}}
	require.NoError(t, ow.WriteRepo(cfg, repo, histories))
	return cfg
}

func callTool(t *testing.T, cfg *contract.Config, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(cfg)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func TestListRepositories(t *testing.T) {
	cfg := publishFixture(t)

	res := callTool(t, cfg, "list_repositories", map[string]any{})
	require.False(t, res.IsError)
	text := res.Content[0].(mcp.TextContent).Text
	assert.Contains(t, text, "fenix")
	assert.Contains(t, text, "lastUpdate")
}

func TestGetItemHistory(t *testing.T) {
	cfg := publishFixture(t)

	t.Run("full history", func(t *testing.T) {
		res := callTool(t, cfg, "get_item_history", map[string]any{
			"repo": "fenix",
			"name": "browser.clicks",
		})
		require.False(t, res.IsError)
		text := res.Content[0].(mcp.TextContent).Text
		assert.Contains(t, text, "Counts clicks.")
		assert.Contains(t, text, "Counts clicks precisely.")
		assert.Contains(t, text, schema.CommitsKey)
	})

	t.Run("unknown item", func(t *testing.T) {
		res := callTool(t, cfg, "get_item_history", map[string]any{
			"repo": "fenix",
			"name": "no.such.metric",
		})
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "no metrics named")
	})

	t.Run("missing arguments", func(t *testing.T) {
		res := callTool(t, cfg, "get_item_history", map[string]any{
			"repo": "fenix",
		})
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "repo and name are required")
	})

	t.Run("unknown repo", func(t *testing.T) {
		res := callTool(t, cfg, "get_item_history", map[string]any{
			"repo": "nope",
			"name": "browser.clicks",
		})
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "artifact lookup failed")
	})
}

func TestGetCurrentMetrics(t *testing.T) {
	cfg := publishFixture(t)

	res := callTool(t, cfg, "get_current_metrics", map[string]any{
		"repo": "fenix",
	})
	require.False(t, res.IsError)
	text := res.Content[0].(mcp.TextContent).Text

	// Only the in-source metric appears, reduced to its newest state.
	assert.Contains(t, text, "browser.clicks")
	assert.Contains(t, text, "Counts clicks precisely.")
	assert.NotContains(t, text, "app.removed")

	t.Run("missing repo argument", func(t *testing.T) {
		res := callTool(t, cfg, "get_current_metrics", map[string]any{})
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "repo is required")
	})
}
