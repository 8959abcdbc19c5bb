package core

import (
	"encoding/json"
	"testing"

	"github.com/mozdata/probescraper/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenEntry(t *testing.T) {
	entry := &schema.HistoryEntry{
		Fields: schema.Definition{
			"description": "a ping",
			"send_if_empty": false,
		},
		First: schema.Commit{Hash: "abc123", Timestamp: 1560000000, ReflogIndex: 4},
		Last:  schema.Commit{Hash: "def456", Timestamp: 1560086400, ReflogIndex: 1},
	}

	flat := FlattenEntry(entry)

	assert.Equal(t, "a ping", flat["description"])
	assert.Equal(t, map[string]any{"first": "abc123", "last": "def456"}, flat[schema.CommitsKey])
	assert.Equal(t, map[string]any{"first": 4, "last": 1}, flat[schema.ReflogKey])

	dates, ok := flat[schema.DatesKey].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2019-06-08 13:20:00", dates["first"])
	assert.Equal(t, "2019-06-09 13:20:00", dates["last"])
}

func TestBuildOutputPreservesOrderAndBoundaries(t *testing.T) {
	histories := map[string]*schema.ItemHistory{
		"example.duration": {
			Name:     "example.duration",
			InSource: true,
			History: []*schema.HistoryEntry{
				{
					Fields: schema.Definition{"description": "first"},
					First:  schema.Commit{Hash: "c1", Timestamp: 100},
					Last:   schema.Commit{Hash: "c2", Timestamp: 200},
				},
				{
					Fields: schema.Definition{"description": "second"},
					First:  schema.Commit{Hash: "c3", Timestamp: 300},
					Last:   schema.Commit{Hash: "c3", Timestamp: 300},
				},
			},
		},
	}

	out := BuildOutput(histories)
	require.Contains(t, out, "example.duration")

	record, ok := out["example.duration"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "example.duration", record[schema.NameKey])
	assert.Equal(t, true, record[schema.InSourceKey])

	entries, ok := record[schema.HistoryKey].([]map[string]any)
	require.True(t, ok)
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0]["description"])
	assert.Equal(t, "second", entries[1]["description"])

	// The whole structure must be JSON-serializable as-is.
	_, err := json.Marshal(out)
	require.NoError(t, err)
}

func TestBuildOutputDatesOrdered(t *testing.T) {
	histories := map[string]*schema.ItemHistory{
		"x": {
			Name: "x",
			History: []*schema.HistoryEntry{
				{
					Fields: schema.Definition{},
					First:  schema.Commit{Hash: "c1", Timestamp: 50},
					Last:   schema.Commit{Hash: "c2", Timestamp: 90},
				},
			},
		},
	}

	out := BuildOutput(histories)
	record := out["x"].(map[string]any)
	entries := record[schema.HistoryKey].([]map[string]any)
	dates := entries[0][schema.DatesKey].(map[string]any)

	first, err := schema.ParseArtifactDate(dates["first"].(string))
	require.NoError(t, err)
	last, err := schema.ParseArtifactDate(dates["last"].(string))
	require.NoError(t, err)
	assert.False(t, last.Before(first))
}
