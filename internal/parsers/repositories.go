package parsers

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mozdata/probescraper/schema"
)

// repoNamePattern constrains repository names to identifiers that are
// safe to use as directory names and cache keys.
var repoNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// ParseRepositories reads a repositories.yaml file and returns the
// scrape targets sorted by name.
func ParseRepositories(path string) ([]schema.Repository, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read repositories file: %w", err)
	}
	return parseRepositories(contents)
}

func parseRepositories(contents []byte) ([]schema.Repository, error) {
	var doc map[string]schema.Repository
	if err := yaml.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("malformed repositories file: %w", err)
	}

	repos := make([]schema.Repository, 0, len(doc))
	for name, repo := range doc {
		if !repoNamePattern.MatchString(name) {
			return nil, fmt.Errorf("invalid repository name %q", name)
		}
		repo.Name = name
		if repo.URL == "" {
			return nil, fmt.Errorf("repository %s has no url", name)
		}
		repos = append(repos, repo)
	}
	sort.Slice(repos, func(i, j int) bool { return repos[i].Name < repos[j].Name })
	return repos, nil
}
