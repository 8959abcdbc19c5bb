// Package schema has configs, models and global variables for all parts of probescraper.
package schema

import "maps"

// Commit identifies one revision of a scraped repository.
// Commits are immutable once produced by the git layer.
type Commit struct {
	Hash        string // Full git commit hash
	Timestamp   int64  // Committer timestamp in UTC seconds
	ReflogIndex int    // Position within the git log traversal, breaks timestamp ties
}

// Definition is the raw parsed form of one metric, ping or tag as it
// existed at a single commit. Only the equality policy's allow-list of
// fields participates in merge decisions; everything else is carried
// into the output verbatim.
type Definition map[string]any

// Clone returns a copy of the definition that is safe to retain while
// the original keeps flowing through the pipeline.
func (d Definition) Clone() Definition {
	return maps.Clone(d)
}

// Snapshot maps item names to their definitions as seen at one commit.
// An absent name means the item did not exist at that commit.
type Snapshot map[string]Definition

// HistoryEntry covers a maximal contiguous run of commits over which an
// item's definition is unchanged under the equality policy.
type HistoryEntry struct {
	Fields Definition // Representative fields, copied from the entry's first commit
	First  Commit     // Earliest commit that introduced this state
	Last   Commit     // Latest commit still exhibiting this state
}

// ItemHistory is the full change history of one item, ordered oldest first.
type ItemHistory struct {
	Name     string
	History  []*HistoryEntry
	InSource bool // Whether the item is still present at the newest scraped commit
}

// Email is one queued alert message. Delivery is left to the caller;
// the scraper only constructs and records these.
type Email struct {
	Subject    string   `yaml:"subject"`
	Message    string   `yaml:"message"`
	Recipients []string `yaml:"recipients"`
}

// RepoSummary captures per-repository scrape statistics for the final
// summary table.
type RepoSummary struct {
	Name    string
	Commits int
	Metrics int
	Pings   int
	Tags    int
	Errors  int
}
