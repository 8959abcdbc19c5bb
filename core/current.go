package core

import (
	"github.com/mozdata/probescraper/schema"
)

// CurrentEntry returns the entry describing the item's present state:
// the one with the greatest last date, breaking ties in favor of the
// smaller last reflog index. In a well-formed history this is the final
// entry, but the scan keeps the selection correct even if a caller has
// reordered the slice.
func CurrentEntry(item *schema.ItemHistory) *schema.HistoryEntry {
	var current *schema.HistoryEntry
	for _, e := range item.History {
		if current == nil || laterState(e, current) {
			current = e
		}
	}
	return current
}

// laterState reports whether entry a represents a more recent state
// than entry b.
func laterState(a, b *schema.HistoryEntry) bool {
	if a.Last.Timestamp != b.Last.Timestamp {
		return a.Last.Timestamp > b.Last.Timestamp
	}
	return a.Last.ReflogIndex < b.Last.ReflogIndex
}

// CurrentMetrics reduces full histories to the present state of every
// item that is still in source. Expiry and duplicate checks only care
// about the current state.
func CurrentMetrics(histories map[string]*schema.ItemHistory) map[string]*schema.HistoryEntry {
	current := make(map[string]*schema.HistoryEntry)
	for name, item := range histories {
		if !item.InSource {
			continue
		}
		if e := CurrentEntry(item); e != nil {
			current[name] = e
		}
	}
	return current
}
