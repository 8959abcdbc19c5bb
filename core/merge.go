package core

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mozdata/probescraper/schema"
)

// ErrUnknownCommit is returned when a snapshot references a commit hash
// that is missing from the commit map. This is a contract violation by
// the snapshot producer, not a recoverable condition.
var ErrUnknownCommit = errors.New("snapshot references unknown commit")

// Merge folds a per-commit stream of definition snapshots into one
// deduplicated history per item name.
//
// Commits are walked oldest first in canonical (timestamp, reflog index)
// order regardless of map iteration order. For each item present in a
// commit, the walk either opens a new history entry, extends the
// currently open entry when the definition is equal under the policy, or
// appends a new entry when the definition changed. Coalescing is
// strictly adjacency-based: a definition that flips A, B, A produces
// three entries, preserving the record of the intermediate state.
//
// An item absent from a commit neither extends nor closes its open
// entry; if it reappears later with an equal definition the existing
// entry keeps extending across the gap.
//
// The representative fields of an entry always come from the first
// commit of its interval, so descriptive fields reflect the original
// author's wording even when later equal commits touch the file.
func Merge(commits map[string]schema.Commit, snapshots map[string]schema.Snapshot, policy EqualityPolicy) (map[string]*schema.ItemHistory, error) {
	order, err := snapshotOrder(commits, snapshots)
	if err != nil {
		return nil, err
	}

	histories := make(map[string]*schema.ItemHistory)
	for _, hash := range order {
		commit := commits[hash]
		for name, def := range snapshots[hash] {
			item, ok := histories[name]
			if !ok {
				histories[name] = &schema.ItemHistory{
					Name:    name,
					History: []*schema.HistoryEntry{newEntry(def, commit)},
				}
				continue
			}

			open := item.History[len(item.History)-1]
			if policy.Equal(open.Fields, def) {
				// Same state, extended. The representative fields stay
				// untouched; only the interval end moves forward.
				open.Last = commit
				continue
			}
			item.History = append(item.History, newEntry(def, commit))
		}
	}

	return histories, nil
}

// snapshotOrder validates that every snapshotted commit is known and
// returns the hashes sorted oldest first.
func snapshotOrder(commits map[string]schema.Commit, snapshots map[string]schema.Snapshot) ([]string, error) {
	hashes := make([]string, 0, len(snapshots))
	for hash := range snapshots {
		if _, ok := commits[hash]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCommit, hash)
		}
		hashes = append(hashes, hash)
	}
	sort.Slice(hashes, func(i, j int) bool {
		return Earlier(commits[hashes[i]], commits[hashes[j]])
	})
	return hashes, nil
}

// newEntry opens a history entry whose interval starts and ends at the
// given commit.
func newEntry(def schema.Definition, commit schema.Commit) *schema.HistoryEntry {
	return &schema.HistoryEntry{
		Fields: def.Clone(),
		First:  commit,
		Last:   commit,
	}
}
