package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mozdata/probescraper/internal/contract"
	"github.com/mozdata/probescraper/internal/outwriter"
	"github.com/mozdata/probescraper/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
}

// outputDir resolves the artifact directory for one request.
func (h *toolHandler) outputDir(request mcp.CallToolRequest) string {
	if dir := request.GetString("output_dir", ""); dir != "" {
		return dir
	}
	if h.baseCfg.OutputDir != "" {
		return h.baseCfg.OutputDir
	}
	return contract.DefaultOutputDir
}

func (h *toolHandler) handleListRepositories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir := h.outputDir(request)
	names, err := outwriter.ListArtifactRepos(dir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing failed: %v", err)), nil
	}

	repos := make([]map[string]any, 0, len(names))
	for _, name := range names {
		entry := map[string]any{schema.NameKey: name}
		if general, err := outwriter.ReadRepoArtifact(dir, name, "general"); err == nil {
			entry["lastUpdate"] = general["lastUpdate"]
		}
		repos = append(repos, entry)
	}

	jsonData, _ := json.MarshalIndent(repos, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetItemHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repo := request.GetString("repo", "")
	name := request.GetString("name", "")
	if repo == "" || name == "" {
		return mcp.NewToolResultError("repo and name are required"), nil
	}
	kind := request.GetString("kind", string(schema.MetricsKind))

	items, err := outwriter.ReadRepoArtifact(h.outputDir(request), repo, kind)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("artifact lookup failed: %v", err)), nil
	}
	item, ok := items[name]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no %s named %q in %s", kind, name, repo)), nil
	}

	jsonData, _ := json.MarshalIndent(item, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetCurrentMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repo := request.GetString("repo", "")
	if repo == "" {
		return mcp.NewToolResultError("repo is required"), nil
	}

	items, err := outwriter.ReadRepoArtifact(h.outputDir(request), repo, string(schema.MetricsKind))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("artifact lookup failed: %v", err)), nil
	}

	current := make(map[string]any)
	for name, raw := range items {
		record, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if inSource, _ := record[schema.InSourceKey].(bool); !inSource {
			continue
		}
		if entry := currentArtifactEntry(record); entry != nil {
			current[name] = entry
		}
	}

	jsonData, _ := json.MarshalIndent(current, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// currentArtifactEntry picks the history entry describing the item's
// present state: greatest last date, ties broken by the smaller last
// reflog index. The artifact date format sorts lexicographically.
func currentArtifactEntry(record map[string]any) map[string]any {
	history, _ := record[schema.HistoryKey].([]any)
	var current map[string]any
	for _, raw := range history {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if current == nil || laterArtifactEntry(entry, current) {
			current = entry
		}
	}
	return current
}

func laterArtifactEntry(a, b map[string]any) bool {
	aDate, aIdx := entrySpanEnd(a)
	bDate, bIdx := entrySpanEnd(b)
	if aDate != bDate {
		return aDate > bDate
	}
	return aIdx < bIdx
}

// entrySpanEnd extracts the last date and last reflog index of a
// flattened history entry. JSON numbers decode as float64.
func entrySpanEnd(entry map[string]any) (string, float64) {
	var date string
	var index float64
	if dates, ok := entry[schema.DatesKey].(map[string]any); ok {
		date, _ = dates["last"].(string)
	}
	if reflog, ok := entry[schema.ReflogKey].(map[string]any); ok {
		index, _ = reflog["last"].(float64)
	}
	return date, index
}
