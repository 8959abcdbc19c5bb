// Package parquet provides data structures and functions for exporting
// merged item histories to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"sort"

	"github.com/parquet-go/parquet-go"

	"github.com/mozdata/probescraper/schema"
)

// HistoryRow represents one history entry of one item, flattened for
// columnar analysis. Each row is a maximal run of commits over which the
// item definition stayed unchanged.
type HistoryRow struct {
	// Repo is the repository the item was scraped from
	Repo string `parquet:"repo,snappy"`

	// Kind is the item family: metrics, pings or tags
	Kind string `parquet:"kind,snappy"`

	// Name is the item identifier, e.g. "browser.engagement.active_ticks"
	Name string `parquet:"name,snappy"`

	// Type is the declared item type (nullable; pings and tags carry none)
	Type *string `parquet:"type,optional,snappy"`

	// InSource reports whether the item still exists at the newest commit
	InSource bool `parquet:"in_source,snappy"`

	// EntryIndex is the position of this entry within the item history
	EntryIndex int32 `parquet:"entry_index,snappy"`

	// FirstCommit and LastCommit bound the commit interval of this entry
	FirstCommit string `parquet:"first_commit,snappy"`
	LastCommit  string `parquet:"last_commit,snappy"`

	// FirstTimestamp and LastTimestamp are the interval bounds in UTC seconds
	FirstTimestamp int64 `parquet:"first_timestamp,snappy"`
	LastTimestamp  int64 `parquet:"last_timestamp,snappy"`

	// FirstReflogIndex and LastReflogIndex break timestamp ties
	FirstReflogIndex int32 `parquet:"first_reflog_index,snappy"`
	LastReflogIndex  int32 `parquet:"last_reflog_index,snappy"`

	// Description is the declared description field (nullable)
	Description *string `parquet:"description,optional,snappy"`

	// Expires is the declared expiry, rendered as a string (nullable)
	Expires *string `parquet:"expires,optional,snappy"`
}

// ConvertHistories flattens merged histories into Parquet rows, ordered
// by item name and entry index for reproducible files.
func ConvertHistories(repo string, kind schema.ItemKind, histories map[string]*schema.ItemHistory) []HistoryRow {
	names := make([]string, 0, len(histories))
	for name := range histories {
		names = append(names, name)
	}
	sort.Strings(names)

	var rows []HistoryRow
	for _, name := range names {
		item := histories[name]
		for i, entry := range item.History {
			rows = append(rows, HistoryRow{
				Repo:             repo,
				Kind:             string(kind),
				Name:             name,
				Type:             stringField(entry.Fields, schema.TypeKey),
				InSource:         item.InSource,
				EntryIndex:       int32(i),
				FirstCommit:      entry.First.Hash,
				LastCommit:       entry.Last.Hash,
				FirstTimestamp:   entry.First.Timestamp,
				LastTimestamp:    entry.Last.Timestamp,
				FirstReflogIndex: int32(entry.First.ReflogIndex),
				LastReflogIndex:  int32(entry.Last.ReflogIndex),
				Description:      stringField(entry.Fields, "description"),
				Expires:          expiresField(entry.Fields),
			})
		}
	}
	return rows
}

// ConvertResult flattens every kind of one repository's scrape into a
// single row set.
func ConvertResult(repo string, histories map[schema.ItemKind]map[string]*schema.ItemHistory) []HistoryRow {
	kinds := []schema.ItemKind{schema.MetricsKind, schema.PingsKind, schema.TagsKind}
	var rows []HistoryRow
	for _, kind := range kinds {
		rows = append(rows, ConvertHistories(repo, kind, histories[kind])...)
	}
	return rows
}

// WriteHistoryParquet writes a slice of HistoryRow structs to a Parquet file.
func WriteHistoryParquet(data []HistoryRow, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the HistoryRow struct tags
	writer := parquet.NewGenericWriter[HistoryRow](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	// The Write method accepts a variadic slice
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ReadHistoryParquet reads every row back from a Parquet file.
func ReadHistoryParquet(path string) ([]HistoryRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	reader := parquet.NewGenericReader[HistoryRow](file)
	defer func() { _ = reader.Close() }()

	rows := make([]HistoryRow, 0, info.Size()/64)
	buf := make([]HistoryRow, 128)
	for {
		n, err := reader.Read(buf)
		rows = append(rows, buf[:n]...)
		if err != nil {
			break
		}
	}
	return rows, nil
}

func stringField(fields schema.Definition, key string) *string {
	if s, ok := fields[key].(string); ok {
		return &s
	}
	return nil
}

// expiresField renders the expires value, which YAML may decode as a
// string, an int version or a bool.
func expiresField(fields schema.Definition) *string {
	v, ok := fields["expires"]
	if !ok || v == nil {
		return nil
	}
	s := fmt.Sprintf("%v", v)
	return &s
}
