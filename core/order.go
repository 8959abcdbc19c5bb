package core

import (
	"sort"

	"github.com/mozdata/probescraper/schema"
)

// Earlier reports whether commit a precedes commit b in canonical log
// order. Timestamps alone are not enough: commits merged from the same
// pull request often share a timestamp, so the reflog index breaks ties.
// The hash is a final fallback to keep the order total even on malformed
// input with colliding indices.
func Earlier(a, b schema.Commit) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp < b.Timestamp
	}
	if a.ReflogIndex != b.ReflogIndex {
		return a.ReflogIndex < b.ReflogIndex
	}
	return a.Hash < b.Hash
}

// SortCommits returns the given commits ordered oldest first.
func SortCommits(commits []schema.Commit) []schema.Commit {
	sorted := make([]schema.Commit, len(commits))
	copy(sorted, commits)
	sort.Slice(sorted, func(i, j int) bool {
		return Earlier(sorted[i], sorted[j])
	})
	return sorted
}
