package outwriter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mozdata/probescraper/core"
	"github.com/mozdata/probescraper/internal/contract"
	"github.com/mozdata/probescraper/schema"
)

// artifactSubdir is the directory under the output root that holds the
// per-repository artifact trees. The layout <out>/glean/<repo>/<file> is
// part of the external contract consumed by downstream schema
// generators.
const artifactSubdir = "glean"

// RepoDir returns the artifact directory for one repository.
func RepoDir(outputDir, repoName string) string {
	return filepath.Join(outputDir, artifactSubdir, repoName)
}

// writeRepoArtifacts writes the metrics, pings, tags, dependencies and
// general files for one repository.
func writeRepoArtifacts(cfg *contract.Config, repo schema.Repository, histories map[schema.ItemKind]map[string]*schema.ItemHistory, lastUpdate time.Time) error {
	dir := RepoDir(cfg.OutputDir, repo.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create artifact dir for %s: %w", repo.Name, err)
	}

	for kind, fileName := range map[schema.ItemKind]string{
		schema.MetricsKind: "metrics",
		schema.PingsKind:   "pings",
		schema.TagsKind:    "tags",
	} {
		if err := writeJSONFile(filepath.Join(dir, fileName), core.BuildOutput(histories[kind])); err != nil {
			return err
		}
	}

	deps := make(map[string]any, len(repo.Dependencies))
	for _, dep := range repo.Dependencies {
		deps[dep] = map[string]any{
			schema.NameKey: dep,
			schema.TypeKey: "dependency",
		}
	}
	if err := writeJSONFile(filepath.Join(dir, "dependencies"), deps); err != nil {
		return err
	}

	general := map[string]any{
		"lastUpdate": schema.FormatTimestamp(lastUpdate.Unix()),
	}
	return writeJSONFile(filepath.Join(dir, "general"), general)
}

// writeJSONFile writes data as indented JSON to path.
func writeJSONFile(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create artifact %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()
	return writeJSON(file, data)
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// ReadRepoArtifact loads one artifact file back into its generic JSON
// shape. Consumers such as the MCP tools read published artifacts
// instead of rescraping.
func ReadRepoArtifact(outputDir, repoName, fileName string) (map[string]any, error) {
	path := filepath.Join(RepoDir(outputDir, repoName), fileName)
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read artifact %s: %w", path, err)
	}
	var data map[string]any
	if err := json.Unmarshal(contents, &data); err != nil {
		return nil, fmt.Errorf("malformed artifact %s: %w", path, err)
	}
	return data, nil
}

// ListArtifactRepos returns the repository names that have artifact
// directories under the output root.
func ListArtifactRepos(outputDir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(outputDir, artifactSubdir))
	if err != nil {
		return nil, fmt.Errorf("cannot list artifact repos: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
