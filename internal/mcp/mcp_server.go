// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mozdata/probescraper/internal/contract"
)

// NewMCPServer initializes and configures the probescraper MCP server
// without starting it. This is exposed for unit testing. The tools serve
// published artifacts; they never trigger a scrape.
func NewMCPServer(baseCfg *contract.Config) *server.MCPServer {
	s := server.NewMCPServer(
		"Probe Scraper Artifact Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
	}

	// --- 1. Tool: list_repositories ---
	s.AddTool(mcp.NewTool("list_repositories",
		mcp.WithDescription("List repositories with published metric, ping and tag artifacts."),
		mcp.WithString("output_dir", mcp.Description("Artifact directory (defaults to the configured output directory).")),
	), h.handleListRepositories)

	// --- 2. Tool: get_item_history ---
	s.AddTool(mcp.NewTool("get_item_history",
		mcp.WithDescription("Get the deduplicated change history of one metric, ping or tag."),
		mcp.WithString("repo", mcp.Description("Repository name, e.g. 'fenix'."), mcp.Required()),
		mcp.WithString("name", mcp.Description("Item identifier, e.g. 'browser.engagement.active_ticks'."), mcp.Required()),
		mcp.WithString("kind", mcp.Description("Item kind. Defaults to 'metrics'."), mcp.Enum("metrics", "pings", "tags")),
		mcp.WithString("output_dir", mcp.Description("Artifact directory (defaults to the configured output directory).")),
	), h.handleGetItemHistory)

	// --- 3. Tool: get_current_metrics ---
	s.AddTool(mcp.NewTool("get_current_metrics",
		mcp.WithDescription("Get the present definition of every metric still in source for a repository."),
		mcp.WithString("repo", mcp.Description("Repository name, e.g. 'fenix'."), mcp.Required()),
		mcp.WithString("output_dir", mcp.Description("Artifact directory (defaults to the configured output directory).")),
	), h.handleGetCurrentMetrics)

	return s
}

// StartMCPServer starts the probescraper MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config) error {
	s := NewMCPServer(baseCfg)
	return server.ServeStdio(s)
}
