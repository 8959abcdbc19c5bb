package core

import (
	"testing"

	"github.com/mozdata/probescraper/schema"
	"github.com/stretchr/testify/assert"
)

func TestProbeEquality(t *testing.T) {
	base := func() schema.Definition {
		return schema.Definition{
			"cpp_guard": nil,
			"optout":    false,
			"details": map[string]any{
				"low":       1,
				"high":      10,
				"keyed":     false,
				"kind":      "exponential",
				"n_buckets": 5,
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(d schema.Definition)
		equal  bool
	}{
		{
			name:   "identical",
			mutate: func(schema.Definition) {},
			equal:  true,
		},
		{
			name: "description ignored",
			mutate: func(d schema.Definition) {
				d["description"] = "reworded"
			},
			equal: true,
		},
		{
			name: "revision pointers ignored",
			mutate: func(d schema.Definition) {
				d["revisions"] = map[string]any{"first": "abc", "last": "def"}
			},
			equal: true,
		},
		{
			name: "optout differs",
			mutate: func(d schema.Definition) {
				d["optout"] = true
			},
			equal: false,
		},
		{
			name: "bucket bound differs",
			mutate: func(d schema.Definition) {
				d["details"].(map[string]any)["high"] = 100
			},
			equal: false,
		},
		{
			name: "detail kind differs",
			mutate: func(d schema.Definition) {
				d["details"].(map[string]any)["kind"] = "linear"
			},
			equal: false,
		},
		{
			name: "details removed entirely",
			mutate: func(d schema.Definition) {
				delete(d, "details")
			},
			equal: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := base(), base()
			tt.mutate(b)
			assert.Equal(t, tt.equal, ProbeEquality{}.Equal(a, b))
			assert.Equal(t, tt.equal, ProbeEquality{}.Equal(b, a))
		})
	}
}

func TestProbeEqualityMissingFieldsCoalesce(t *testing.T) {
	// A field absent on one side and nil on the other counts as equal.
	a := schema.Definition{"optout": false}
	b := schema.Definition{"optout": false, "cpp_guard": nil}
	assert.True(t, ProbeEquality{}.Equal(a, b))

	c := schema.Definition{"optout": false, "cpp_guard": "NIGHTLY_BUILD"}
	assert.False(t, ProbeEquality{}.Equal(a, c))
}

func TestPingEquality(t *testing.T) {
	base := func() schema.Definition {
		return schema.Definition{
			"bugs":                []any{"1234"},
			"data_reviews":        []any{"https://example.com/review"},
			"description":         "a ping",
			"notification_emails": []any{"owner@example.com"},
			"include_client_id":   true,
			"send_if_empty":       false,
		}
	}

	a, b := base(), base()
	assert.True(t, PingEquality{}.Equal(a, b))

	b["moz_pipeline_metadata"] = map[string]any{"bq_table": "x"}
	assert.True(t, PingEquality{}.Equal(a, b), "fields outside the allow-list are ignored")

	b["include_client_id"] = false
	assert.False(t, PingEquality{}.Equal(a, b))
}

func TestMetricEquality(t *testing.T) {
	base := func() schema.Definition {
		return schema.Definition{
			"type":                "timing_distribution",
			"description":         "duration of a thing",
			"expires":             "never",
			"send_in_pings":       []any{"metrics"},
			"notification_emails": []any{"owner@example.com"},
		}
	}

	a, b := base(), base()
	assert.True(t, MetricEquality{}.Equal(a, b))

	// Any serialized field participates for metrics.
	b["description"] = "reworded"
	assert.False(t, MetricEquality{}.Equal(a, b))

	// Bookkeeping keys never participate.
	c := base()
	c[schema.CommitsKey] = map[string]any{"first": "abc", "last": "abc"}
	c[schema.DatesKey] = map[string]any{"first": "2020-01-01 00:00:00", "last": "2020-01-01 00:00:00"}
	assert.True(t, MetricEquality{}.Equal(a, c))

	// A key only present on one side with a non-nil value is a change.
	d := base()
	d["unit"] = "ms"
	assert.False(t, MetricEquality{}.Equal(a, d))
	assert.False(t, MetricEquality{}.Equal(d, a))

	// Unless its value is nil, which coalesces with absence.
	e := base()
	e["unit"] = nil
	assert.True(t, MetricEquality{}.Equal(a, e))
	assert.True(t, MetricEquality{}.Equal(e, a))
}

func TestTagEquality(t *testing.T) {
	a := schema.Definition{"description": "Pages about bookmarks"}
	b := schema.Definition{"description": "Pages about bookmarks", "extra": 1}
	c := schema.Definition{"description": "Something else"}

	assert.True(t, TagEquality{}.Equal(a, b))
	assert.False(t, TagEquality{}.Equal(a, c))
}

func TestPolicyFor(t *testing.T) {
	assert.IsType(t, MetricEquality{}, PolicyFor(schema.MetricsKind))
	assert.IsType(t, PingEquality{}, PolicyFor(schema.PingsKind))
	assert.IsType(t, TagEquality{}, PolicyFor(schema.TagsKind))
}
