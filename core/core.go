// Package core has the history merge, equality and check logic for
// scraped definitions. Everything in this package is pure: it performs
// no I/O and operates only on snapshot data already materialized by the
// git and parser layers.
package core

import (
	"github.com/mozdata/probescraper/schema"
)

// RepoData bundles one repository's scraped input for a single item kind:
// the commit log and the per-commit definition snapshots.
type RepoData struct {
	Commits   map[string]schema.Commit
	Snapshots map[string]schema.Snapshot
}

// BuildHistories merges one repository's snapshots into deduplicated
// per-item histories and marks which items are still present at the
// newest commit.
func BuildHistories(data RepoData, kind schema.ItemKind) (map[string]*schema.ItemHistory, error) {
	histories, err := Merge(data.Commits, data.Snapshots, PolicyFor(kind))
	if err != nil {
		return nil, err
	}
	if latest, ok := LatestCommit(data.Commits); ok {
		MarkInSource(histories, data.Snapshots[latest.Hash])
	}
	return histories, nil
}

// LatestCommit returns the newest commit in canonical log order, or
// false if the map is empty.
func LatestCommit(commits map[string]schema.Commit) (schema.Commit, bool) {
	var latest schema.Commit
	found := false
	for _, c := range commits {
		if !found || Earlier(latest, c) {
			latest = c
			found = true
		}
	}
	return latest, found
}

// MarkInSource flags every history whose item still appears in the given
// snapshot, which callers take from the newest scraped commit. Items
// missing from the snapshot keep their history but are marked as no
// longer in source.
func MarkInSource(histories map[string]*schema.ItemHistory, latest schema.Snapshot) {
	for name, item := range histories {
		_, ok := latest[name]
		item.InSource = ok
	}
}
