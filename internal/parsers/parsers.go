// Package parsers turns Glean YAML registry files into raw definitions
// keyed by item identifier.
package parsers

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mozdata/probescraper/internal/contract"
	"github.com/mozdata/probescraper/schema"
)

// isReservedKey reports whether a top-level registry key is schema
// bookkeeping rather than an item definition.
func isReservedKey(key string) bool {
	return strings.HasPrefix(key, "$") || key == "no_lint"
}

// pingNameNormalization maps legacy underscore ping names to their
// canonical hyphenated form.
var pingNameNormalization = map[string]string{
	"deletion_request": "deletion-request",
	"bookmarks_sync":   "bookmarks-sync",
	"history_sync":     "history-sync",
	"session_end":      "session-end",
}

// NormalizePingName returns the canonical name for a ping.
func NormalizePingName(name string) string {
	if normalized, ok := pingNameNormalization[name]; ok {
		return normalized
	}
	return name
}

// ForKind returns the parser for the given item kind.
func ForKind(kind schema.ItemKind) contract.Parser {
	switch kind {
	case schema.PingsKind:
		return PingsParser{}
	case schema.TagsKind:
		return TagsParser{}
	default:
		return MetricsParser{}
	}
}

// decodeTopLevel unmarshals a registry file into its top-level entries,
// dropping reserved bookkeeping keys. Values stay as yaml nodes so each
// parser can decode them into its own shape.
func decodeTopLevel(contents []byte) (map[string]yaml.Node, error) {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(contents, &doc); err != nil {
		return nil, err
	}
	for key := range doc {
		if isReservedKey(key) {
			delete(doc, key)
		}
	}
	return doc, nil
}

// MetricsParser parses metrics.yaml files. Metric identifiers are
// "category.name"; each definition keeps every serialized field.
type MetricsParser struct{}

var _ contract.Parser = MetricsParser{} // Compile-time check

// Kind implements contract.Parser.
func (MetricsParser) Kind() schema.ItemKind { return schema.MetricsKind }

// Parse implements contract.Parser.
func (MetricsParser) Parse(files map[string][]byte) (map[string]schema.Definition, []error) {
	metrics := make(map[string]schema.Definition)
	var errs []error

	for path, contents := range files {
		doc, err := decodeTopLevel(contents)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		for category, node := range doc {
			var entries map[string]schema.Definition
			if err := node.Decode(&entries); err != nil {
				errs = append(errs, fmt.Errorf("%s: category %s: %w", path, category, err))
				continue
			}
			for name, def := range entries {
				if def == nil {
					errs = append(errs, fmt.Errorf("%s: empty metric %s.%s", path, category, name))
					continue
				}
				identifier := category + "." + name
				if _, dup := metrics[identifier]; dup {
					errs = append(errs, fmt.Errorf("%s: duplicate metric %s", path, identifier))
					continue
				}
				normalizeSendInPings(def)
				metrics[identifier] = def
			}
		}
	}
	return metrics, errs
}

// normalizeSendInPings rewrites the send_in_pings list to canonical ping
// names in place.
func normalizeSendInPings(def schema.Definition) {
	pings, ok := def["send_in_pings"].([]any)
	if !ok {
		return
	}
	for i, p := range pings {
		if name, ok := p.(string); ok {
			pings[i] = NormalizePingName(name)
		}
	}
}

// PingsParser parses pings.yaml files.
type PingsParser struct{}

var _ contract.Parser = PingsParser{} // Compile-time check

// Kind implements contract.Parser.
func (PingsParser) Kind() schema.ItemKind { return schema.PingsKind }

// Parse implements contract.Parser.
func (PingsParser) Parse(files map[string][]byte) (map[string]schema.Definition, []error) {
	pings := make(map[string]schema.Definition)
	var errs []error

	for path, contents := range files {
		doc, err := decodeTopLevel(contents)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		for name, node := range doc {
			var def schema.Definition
			if err := node.Decode(&def); err != nil {
				errs = append(errs, fmt.Errorf("%s: ping %s: %w", path, name, err))
				continue
			}
			if def == nil {
				errs = append(errs, fmt.Errorf("%s: empty ping %s", path, name))
				continue
			}
			pings[NormalizePingName(name)] = def
		}
	}
	return pings, errs
}

// TagsParser parses tags.yaml files.
type TagsParser struct{}

var _ contract.Parser = TagsParser{} // Compile-time check

// Kind implements contract.Parser.
func (TagsParser) Kind() schema.ItemKind { return schema.TagsKind }

// Parse implements contract.Parser.
func (TagsParser) Parse(files map[string][]byte) (map[string]schema.Definition, []error) {
	tags := make(map[string]schema.Definition)
	var errs []error

	for path, contents := range files {
		doc, err := decodeTopLevel(contents)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		for name, node := range doc {
			var def schema.Definition
			if err := node.Decode(&def); err != nil {
				errs = append(errs, fmt.Errorf("%s: tag %s: %w", path, name, err))
				continue
			}
			if def == nil {
				def = schema.Definition{}
			}
			tags[name] = def
		}
	}
	return tags, errs
}
