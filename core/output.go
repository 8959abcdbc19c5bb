package core

import (
	"github.com/mozdata/probescraper/schema"
)

// BuildOutput converts merged histories into the published JSON shape:
// a map from item name to a record carrying the name, the in-source flag
// and the flattened history entries in their original order. Entry
// boundaries are never altered here; this is mechanical serialization.
func BuildOutput(histories map[string]*schema.ItemHistory) map[string]any {
	out := make(map[string]any, len(histories))
	for name, item := range histories {
		entries := make([]map[string]any, 0, len(item.History))
		for _, e := range item.History {
			entries = append(entries, FlattenEntry(e))
		}
		out[name] = map[string]any{
			schema.NameKey:     item.Name,
			schema.InSourceKey: item.InSource,
			schema.HistoryKey:  entries,
		}
	}
	return out
}

// FlattenEntry renders one history entry as a flat map: the
// representative definition fields plus the git-commits, dates and
// reflog-index spans.
func FlattenEntry(e *schema.HistoryEntry) map[string]any {
	flat := make(map[string]any, len(e.Fields)+3)
	for k, v := range e.Fields {
		flat[k] = v
	}
	flat[schema.CommitsKey] = map[string]any{
		"first": e.First.Hash,
		"last":  e.Last.Hash,
	}
	flat[schema.DatesKey] = map[string]any{
		"first": schema.FormatTimestamp(e.First.Timestamp),
		"last":  schema.FormatTimestamp(e.Last.Timestamp),
	}
	flat[schema.ReflogKey] = map[string]any{
		"first": e.First.ReflogIndex,
		"last":  e.Last.ReflogIndex,
	}
	return flat
}
