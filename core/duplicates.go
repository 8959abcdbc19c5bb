package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mozdata/probescraper/schema"
)

// ErrMissingDependency is returned when a repository declares a
// dependency that no scraped repository publishes as a library name.
var ErrMissingDependency = errors.New("missing dependency")

const duplicateMetricsTemplate = `Duplicated metric identifiers were detected coming from the product '%s'.

%s

What to do about this:

1. File a bug to track your investigation.
2. Rename the most recently added metric to be more specific.
3. Make sure the resolution is schema-compatible.

What happens if you don't fix this:

The metrics will compete to send their data in pings, making the data
unreliable at best.

This is an automated message sent from probe-scraper.
`

// CheckDuplicateMetrics looks for metric identifiers defined both by an
// application and by one of its dependency libraries (or by two of its
// libraries). Only metrics still present in source count: a metric that
// was removed cannot collide with a live one.
//
// One alert email per affected application is appended to emails, keyed
// by "duplicate_metrics_<app>", addressed to the repository contacts and
// the notification emails of every colliding definition. Returns true if
// any duplicates were found.
func CheckDuplicateMetrics(repos []schema.Repository, metricsByRepo map[string]map[string]*schema.ItemHistory, emails map[string]schema.Email) (bool, error) {
	repoByLibrary := make(map[string]string)
	repoByName := make(map[string]schema.Repository, len(repos))
	for _, repo := range repos {
		for _, lib := range repo.LibraryNames {
			repoByLibrary[lib] = repo.Name
		}
		repoByName[repo.Name] = repo
	}

	found := false
	for _, repo := range repos {
		sources := []string{repo.Name}
		for _, lib := range repo.Dependencies {
			provider, ok := repoByLibrary[lib]
			if !ok {
				return found, fmt.Errorf("%w: %s requires %s", ErrMissingDependency, repo.Name, lib)
			}
			sources = append(sources, provider)
		}

		metricSources := make(map[string][]string)
		for _, source := range sources {
			for name := range CurrentMetrics(metricsByRepo[source]) {
				metricSources[name] = append(metricSources[name], source)
			}
		}

		var lines []string
		addresses := make(map[string]bool)
		for name, defined := range metricSources {
			if len(defined) < 2 {
				continue
			}
			sort.Strings(defined)
			lines = append(lines, fmt.Sprintf("- %q defined more than once in %s", name, strings.Join(defined, ", ")))
			for _, source := range defined {
				for _, addr := range repoByName[source].NotificationEmails {
					addresses[addr] = true
				}
				for _, entry := range metricsByRepo[source][name].History {
					for _, addr := range stringList(entry.Fields, "notification_emails") {
						addresses[addr] = true
					}
				}
			}
		}
		if len(lines) == 0 {
			continue
		}

		found = true
		sort.Strings(lines)
		emails["duplicate_metrics_"+repo.Name] = schema.Email{
			Subject:    "Glean: Duplicate metric identifiers detected",
			Message:    fmt.Sprintf(duplicateMetricsTemplate, repo.Name, strings.Join(lines, "\n")),
			Recipients: sortedKeys(addresses),
		}
	}

	return found, nil
}

// stringList reads a list-of-strings field from a definition, tolerating
// both []string and the []any shape produced by YAML decoding.
func stringList(def schema.Definition, key string) []string {
	switch v := def[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
