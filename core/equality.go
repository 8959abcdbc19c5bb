package core

import (
	"reflect"

	"github.com/mozdata/probescraper/schema"
)

// EqualityPolicy decides whether two definitions of the same item
// represent the same logical state, for the purpose of collapsing
// adjacent commits into one history entry. Implementations must be pure
// and tolerate missing optional fields on either side.
type EqualityPolicy interface {
	Equal(a, b schema.Definition) bool
}

// PolicyFor returns the equality policy for an item kind.
func PolicyFor(kind schema.ItemKind) EqualityPolicy {
	switch kind {
	case schema.PingsKind:
		return PingEquality{}
	case schema.TagsKind:
		return TagEquality{}
	default:
		return MetricEquality{}
	}
}

// fieldEqual compares two field values with nil-coalescing semantics: a
// field absent on one side and nil on the other counts as equal.
func fieldEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// probeTopFields and probeDetailFields are the structural fields that
// determine whether two legacy probe definitions are the same state.
// Fields that encode where in history the probe was seen (revisions,
// versions) are deliberately excluded.
var (
	probeTopFields = []string{
		"cpp_guard",
		"optout",
	}
	probeDetailFields = []string{
		// Histograms and scalars.
		"keyed",
		"kind",
		// Histograms.
		"n_buckets",
		"n_values",
		"low",
		"high",
		// Events.
		"methods",
		"objects",
		"extra_keys",
	}
)

// ProbeEquality compares legacy telemetry probes (histograms, scalars
// and events) on their structural fields only.
type ProbeEquality struct{}

// Equal implements EqualityPolicy.
func (ProbeEquality) Equal(a, b schema.Definition) bool {
	for _, f := range probeTopFields {
		if !fieldEqual(a[f], b[f]) {
			return false
		}
	}
	da, db := detailFields(a), detailFields(b)
	for _, f := range probeDetailFields {
		if !fieldEqual(da[f], db[f]) {
			return false
		}
	}
	return true
}

// detailFields extracts the kind-specific detail map of a probe
// definition. Probes without details compare as all-nil.
func detailFields(def schema.Definition) map[string]any {
	if m, ok := def["details"].(map[string]any); ok {
		return m
	}
	return nil
}

// pingFields is the allow-list of fields that determine whether two ping
// definitions are the same state.
var pingFields = []string{
	"bugs",
	"data_reviews",
	"description",
	"notification_emails",
	"include_client_id",
	"send_if_empty",
}

// PingEquality compares Glean ping definitions.
type PingEquality struct{}

// Equal implements EqualityPolicy.
func (PingEquality) Equal(a, b schema.Definition) bool {
	for _, f := range pingFields {
		if !fieldEqual(a[f], b[f]) {
			return false
		}
	}
	return true
}

// bookkeepingKeys are added by the output builder and never present in
// parser output; they are excluded from metric comparison so that a
// definition remains equal to itself across runs.
var bookkeepingKeys = map[string]bool{
	schema.CommitsKey:  true,
	schema.DatesKey:    true,
	schema.ReflogKey:   true,
	schema.InSourceKey: true,
}

// MetricEquality compares Glean metric definitions on every serialized
// field except bookkeeping keys. The glean parser serializes a stable
// set of fields, so a full comparison is the correct notion of "same
// state" for metrics.
type MetricEquality struct{}

// Equal implements EqualityPolicy.
func (MetricEquality) Equal(a, b schema.Definition) bool {
	for k, v := range a {
		if bookkeepingKeys[k] {
			continue
		}
		if !fieldEqual(v, b[k]) {
			return false
		}
	}
	for k, v := range b {
		if bookkeepingKeys[k] {
			continue
		}
		if _, ok := a[k]; !ok && !fieldEqual(v, nil) {
			return false
		}
	}
	return true
}

// TagEquality compares Glean tag definitions, which only carry a
// description.
type TagEquality struct{}

// Equal implements EqualityPolicy.
func (TagEquality) Equal(a, b schema.Definition) bool {
	return fieldEqual(a["description"], b["description"])
}
