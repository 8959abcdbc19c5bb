package outwriter

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mozdata/probescraper/internal/contract"
	"github.com/mozdata/probescraper/schema"
)

func sampleHistories() map[schema.ItemKind]map[string]*schema.ItemHistory {
	return map[schema.ItemKind]map[string]*schema.ItemHistory{
		schema.MetricsKind: {
			"browser.clicks": {
				Name:     "browser.clicks",
				InSource: true,
				History: []*schema.HistoryEntry{
					{
						Fields: schema.Definition{"type": "counter", "description": "Counts clicks."},
						First:  schema.Commit{Hash: "aaa", Timestamp: 1560000000, ReflogIndex: 1},
						Last:   schema.Commit{Hash: "bbb", Timestamp: 1560100000, ReflogIndex: 0},
					},
				},
			},
		},
		schema.PingsKind: {},
	}
}

func TestWriteRepoArtifacts(t *testing.T) {
	cfg := &contract.Config{OutputDir: t.TempDir()}
	repo := schema.Repository{
		Name:         "fenix",
		Dependencies: []string{"glean-core"},
	}

	lastUpdate := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, writeRepoArtifacts(cfg, repo, sampleHistories(), lastUpdate))

	metrics, err := ReadRepoArtifact(cfg.OutputDir, "fenix", "metrics")
	require.NoError(t, err)
	require.Contains(t, metrics, "browser.clicks")
	item := metrics["browser.clicks"].(map[string]any)
	assert.Equal(t, "browser.clicks", item[schema.NameKey])
	assert.Equal(t, true, item[schema.InSourceKey])
	history := item[schema.HistoryKey].([]any)
	require.Len(t, history, 1)
	entry := history[0].(map[string]any)
	assert.Equal(t, "counter", entry["type"])
	commits := entry[schema.CommitsKey].(map[string]any)
	assert.Equal(t, "aaa", commits["first"])
	assert.Equal(t, "bbb", commits["last"])
	dates := entry[schema.DatesKey].(map[string]any)
	assert.Equal(t, "2019-06-08 13:20:00", dates["first"])

	// Kinds the repo never declared still produce empty artifacts.
	pings, err := ReadRepoArtifact(cfg.OutputDir, "fenix", "pings")
	require.NoError(t, err)
	assert.Empty(t, pings)
	tags, err := ReadRepoArtifact(cfg.OutputDir, "fenix", "tags")
	require.NoError(t, err)
	assert.Empty(t, tags)

	deps, err := ReadRepoArtifact(cfg.OutputDir, "fenix", "dependencies")
	require.NoError(t, err)
	require.Contains(t, deps, "glean-core")
	dep := deps["glean-core"].(map[string]any)
	assert.Equal(t, "dependency", dep[schema.TypeKey])

	general, err := ReadRepoArtifact(cfg.OutputDir, "fenix", "general")
	require.NoError(t, err)
	assert.Equal(t, "2021-03-01 12:00:00", general["lastUpdate"])
}

func TestReadRepoArtifactErrors(t *testing.T) {
	_, err := ReadRepoArtifact(t.TempDir(), "nope", "metrics")
	assert.ErrorContains(t, err, "cannot read artifact")
}

func TestListArtifactRepos(t *testing.T) {
	cfg := &contract.Config{OutputDir: t.TempDir()}
	for _, name := range []string{"fenix", "glean-core"} {
		repo := schema.Repository{Name: name}
		require.NoError(t, writeRepoArtifacts(cfg, repo, nil, time.Now()))
	}

	names, err := ListArtifactRepos(cfg.OutputDir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"fenix", "glean-core"}, names)

	_, err = ListArtifactRepos(filepath.Join(t.TempDir(), "empty"))
	assert.Error(t, err)
}

func TestRenderSummary(t *testing.T) {
	summaries := []schema.RepoSummary{
		{Name: "glean-core", Commits: 10, Metrics: 5, Pings: 2, Tags: 0, Errors: 0},
		{Name: "fenix", Commits: 20, Metrics: 30, Pings: 4, Tags: 3, Errors: 1},
	}
	cfg := &contract.Config{
		Workers:      4,
		Width:        120,
		CacheBackend: schema.SQLiteBackend,
	}

	var buf bytes.Buffer
	require.NoError(t, renderSummary(&buf, summaries, cfg, 2*time.Second))

	out := buf.String()
	assert.Contains(t, out, "fenix")
	assert.Contains(t, out, "glean-core")
	assert.Contains(t, out, "Scraped 2 repositories (commits: 30, metrics: 35, pings: 6, tags: 3, errors: 1)")
	assert.Contains(t, out, "Cache backend: sqlite")
}

func TestFormatErrorCount(t *testing.T) {
	assert.Equal(t, "0", formatErrorCount(0, false))
	assert.Equal(t, "3", formatErrorCount(3, false))
	// With colors enabled the digit is still present in the decorated string.
	assert.Contains(t, formatErrorCount(3, true), "3")
}

func TestGetMaxTableNameWidth(t *testing.T) {
	assert.Equal(t, 50, getMaxTableNameWidth(&contract.Config{Width: 300}))
	assert.Equal(t, 15, getMaxTableNameWidth(&contract.Config{Width: 40}))
	assert.Equal(t, 25, getMaxTableNameWidth(&contract.Config{Width: 80}))
}

func TestTruncateName(t *testing.T) {
	assert.Equal(t, "short", truncateName("short", 15))
	assert.Equal(t, "...organization-repository", truncateName("very-long-organization-repository", 26))
}
