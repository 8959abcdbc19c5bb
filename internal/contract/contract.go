// Package contract provides interfaces and shared utilities for the
// probescraper internal architecture.
package contract

import (
	"context"

	"github.com/mozdata/probescraper/schema"
)

// GitClient defines the git operations the scraper needs. The merge core
// never touches git; this interface exists so the snapshot layer can be
// tested without a real git executable.
type GitClient interface {
	// Run executes a git command and returns the combined output. Its use
	// should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// Clone clones url at the given branch into dest. An empty branch
	// clones the remote default branch.
	Clone(ctx context.Context, url, branch, dest string) error

	// FileLog returns every commit that touched the given file, keyed by
	// hash. The reflog index of each commit records its position in the
	// log enumeration so that timestamp ties order deterministically.
	FileLog(ctx context.Context, repoPath, file string) (map[string]schema.Commit, error)

	// HeadCommit returns the commit currently checked out.
	HeadCommit(ctx context.Context, repoPath string) (schema.Commit, error)

	// ShowFile returns the contents of file as it existed at the given
	// commit hash.
	ShowFile(ctx context.Context, repoPath, hash, file string) ([]byte, error)
}

// Parser turns raw definition files into named definitions. One
// implementation exists per item kind; all of them surface parse
// problems as a plain error list so a single malformed file never
// aborts a whole scrape.
type Parser interface {
	Kind() schema.ItemKind
	Parse(files map[string][]byte) (map[string]schema.Definition, []error)
}

// CacheManager defines the interface for managing the scrape cache.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetScrapeStore() CacheStore
}

// CacheStore defines the interface for scrape cache storage: file
// contents keyed by (repository, commit, path) so repeated runs do not
// re-read unchanged blobs from git.
type CacheStore interface {
	Get(key string) ([]byte, int64, error)
	Set(key string, value []byte, timestamp int64) error
	Clear() error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}
