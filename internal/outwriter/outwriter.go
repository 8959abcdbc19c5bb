// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/mozdata/probescraper/internal/contract"
	"github.com/mozdata/probescraper/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the artifact and summary formats and provides a clean
// API for the command layer.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteRepo writes one repository's artifact files under the output
// directory.
func (ow *OutWriter) WriteRepo(cfg *contract.Config, repo schema.Repository, histories map[schema.ItemKind]map[string]*schema.ItemHistory) error {
	return writeRepoArtifacts(cfg, repo, histories, time.Now().UTC())
}

// WriteSummary prints the per-repository scrape summary table.
func (ow *OutWriter) WriteSummary(summaries []schema.RepoSummary, cfg *contract.Config, duration time.Duration) error {
	return writeSummaryTable(summaries, cfg, duration)
}
