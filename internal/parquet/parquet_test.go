package parquet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mozdata/probescraper/schema"
)

func sampleHistories() map[string]*schema.ItemHistory {
	return map[string]*schema.ItemHistory{
		"browser.clicks": {
			Name:     "browser.clicks",
			InSource: true,
			History: []*schema.HistoryEntry{
				{
					Fields: schema.Definition{"type": "counter", "description": "Counts clicks.", "expires": "never"},
					First:  schema.Commit{Hash: "aaa", Timestamp: 1000, ReflogIndex: 2},
					Last:   schema.Commit{Hash: "bbb", Timestamp: 2000, ReflogIndex: 1},
				},
				{
					Fields: schema.Definition{"type": "counter", "description": "Counts clicks precisely.", "expires": 120},
					First:  schema.Commit{Hash: "ccc", Timestamp: 3000, ReflogIndex: 0},
					Last:   schema.Commit{Hash: "ccc", Timestamp: 3000, ReflogIndex: 0},
				},
			},
		},
		"app.removed": {
			Name:     "app.removed",
			InSource: false,
			History: []*schema.HistoryEntry{
				{
					Fields: schema.Definition{"type": "event"},
					First:  schema.Commit{Hash: "ddd", Timestamp: 500},
					Last:   schema.Commit{Hash: "ddd", Timestamp: 500},
				},
			},
		},
	}
}

func TestConvertHistories(t *testing.T) {
	rows := ConvertHistories("fenix", schema.MetricsKind, sampleHistories())
	require.Len(t, rows, 3)

	// Sorted by name, then entry index.
	assert.Equal(t, "app.removed", rows[0].Name)
	assert.False(t, rows[0].InSource)
	assert.Nil(t, rows[0].Description)
	assert.Nil(t, rows[0].Expires)

	first := rows[1]
	assert.Equal(t, "browser.clicks", first.Name)
	assert.Equal(t, int32(0), first.EntryIndex)
	assert.Equal(t, "aaa", first.FirstCommit)
	assert.Equal(t, "bbb", first.LastCommit)
	assert.Equal(t, int64(1000), first.FirstTimestamp)
	assert.Equal(t, int32(1), first.LastReflogIndex)
	require.NotNil(t, first.Expires)
	assert.Equal(t, "never", *first.Expires)

	second := rows[2]
	assert.Equal(t, int32(1), second.EntryIndex)
	require.NotNil(t, second.Expires)
	// Integer expiry versions are rendered as strings.
	assert.Equal(t, "120", *second.Expires)
}

func TestConvertResultOrdersKinds(t *testing.T) {
	histories := map[schema.ItemKind]map[string]*schema.ItemHistory{
		schema.MetricsKind: sampleHistories(),
		schema.PingsKind: {
			"baseline": {
				Name:     "baseline",
				InSource: true,
				History: []*schema.HistoryEntry{
					{
						Fields: schema.Definition{"description": "Baseline ping."},
						First:  schema.Commit{Hash: "eee", Timestamp: 100},
						Last:   schema.Commit{Hash: "eee", Timestamp: 100},
					},
				},
			},
		},
	}

	rows := ConvertResult("fenix", histories)
	require.Len(t, rows, 4)
	assert.Equal(t, "metrics", rows[0].Kind)
	assert.Equal(t, "pings", rows[3].Kind)
	assert.Nil(t, rows[3].Type)
}

func TestWriteAndReadHistoryParquet(t *testing.T) {
	rows := ConvertHistories("fenix", schema.MetricsKind, sampleHistories())
	path := filepath.Join(t.TempDir(), "histories.parquet")

	require.NoError(t, WriteHistoryParquet(rows, path))

	back, err := ReadHistoryParquet(path)
	require.NoError(t, err)
	assert.Equal(t, rows, back)
}
