// Package scraper walks repository histories and materializes the
// per-commit snapshots that feed the merge core.
package scraper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mozdata/probescraper/core"
	"github.com/mozdata/probescraper/internal/contract"
	"github.com/mozdata/probescraper/internal/parsers"
	"github.com/mozdata/probescraper/schema"
)

// Scraper drives the clone, log and parse pipeline for a set of
// repositories. It owns no global state; all I/O goes through the
// injected git client and cache manager.
type Scraper struct {
	cfg   *contract.Config
	git   contract.GitClient
	cache contract.CacheManager
}

// New creates a scraper with the given collaborators.
func New(cfg *contract.Config, git contract.GitClient, cache contract.CacheManager) *Scraper {
	return &Scraper{cfg: cfg, git: git, cache: cache}
}

// RepoResult holds everything one repository scrape produced: the merged
// item histories per kind plus the non-fatal problems encountered along
// the way.
type RepoResult struct {
	Repo      schema.Repository
	Histories map[schema.ItemKind]map[string]*schema.ItemHistory
	Commits   int
	Errors    []error
}

// Summary condenses the result into one summary-table row.
func (r *RepoResult) Summary() schema.RepoSummary {
	return schema.RepoSummary{
		Name:    r.Repo.Name,
		Commits: r.Commits,
		Metrics: len(r.Histories[schema.MetricsKind]),
		Pings:   len(r.Histories[schema.PingsKind]),
		Tags:    len(r.Histories[schema.TagsKind]),
		Errors:  len(r.Errors),
	}
}

// ScrapeAll scrapes every repository that survives the configured repo
// filter, processing cfg.Workers repositories concurrently. The returned
// map is keyed by repository name. A repository whose scrape fails
// outright is reported through the error list of its result rather than
// aborting the other repositories.
func (s *Scraper) ScrapeAll(ctx context.Context, repos []schema.Repository) map[string]*RepoResult {
	wanted := make([]schema.Repository, 0, len(repos))
	for _, repo := range repos {
		if s.cfg.WantsRepo(repo.Name) {
			wanted = append(wanted, repo)
		}
	}

	repoCh := make(chan schema.Repository, len(wanted))
	resultCh := make(chan *RepoResult, len(wanted))
	var wg sync.WaitGroup

	for range s.cfg.Workers {
		wg.Go(func() {
			for repo := range repoCh {
				resultCh <- s.scrapeOne(ctx, repo)
			}
		})
	}

	for _, repo := range wanted {
		repoCh <- repo
	}
	close(repoCh)

	wg.Wait()
	close(resultCh)

	results := make(map[string]*RepoResult, len(wanted))
	for r := range resultCh {
		results[r.Repo.Name] = r
	}
	return results
}

// scrapeOne wraps ScrapeRepo so a hard failure still yields a result row.
func (s *Scraper) scrapeOne(ctx context.Context, repo schema.Repository) *RepoResult {
	result, err := s.ScrapeRepo(ctx, repo)
	if err != nil {
		return &RepoResult{Repo: repo, Errors: []error{err}}
	}
	return result
}

// ScrapeRepo clones one repository and builds its merged histories for
// every kind of definition file it declares. Parse problems in
// individual files are collected as non-fatal errors; only clone and log
// failures abort the repository.
func (s *Scraper) ScrapeRepo(ctx context.Context, repo schema.Repository) (*RepoResult, error) {
	dest := filepath.Join(s.cfg.CacheDir, repo.Name)
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		if err := s.git.Clone(ctx, repo.URL, repo.Branch, dest); err != nil {
			return nil, err
		}
	}

	result := &RepoResult{
		Repo:      repo,
		Histories: make(map[schema.ItemKind]map[string]*schema.ItemHistory),
	}
	seen := make(map[string]bool)

	for kind, files := range repo.ChangeFiles() {
		commits, err := s.collectCommits(ctx, dest, repo.Name, files)
		if err != nil {
			return nil, err
		}
		for hash := range commits {
			seen[hash] = true
		}

		snapshots := make(map[string]schema.Snapshot, len(commits))
		parser := parsers.ForKind(kind)
		for hash := range commits {
			contents := make(map[string][]byte)
			for _, file := range files {
				if data, ok := s.fileAt(ctx, dest, repo.Name, hash, file); ok {
					contents[file] = data
				}
			}
			defs, perrs := parser.Parse(contents)
			for _, perr := range perrs {
				result.Errors = append(result.Errors, fmt.Errorf("%s at %s: %w", repo.Name, hash, perr))
			}
			snapshots[hash] = schema.Snapshot(defs)
		}

		histories, err := core.BuildHistories(core.RepoData{Commits: commits, Snapshots: snapshots}, kind)
		if err != nil {
			return nil, err
		}
		result.Histories[kind] = histories
	}

	result.Commits = len(seen)
	return result, nil
}

// collectCommits unions the file logs of every tracked definition file,
// dropping commits outside the configured date window.
func (s *Scraper) collectCommits(ctx context.Context, dest, repoName string, files []string) (map[string]schema.Commit, error) {
	minTS, err := minTimestamp(repoName)
	if err != nil {
		return nil, err
	}

	commits := make(map[string]schema.Commit)
	for _, file := range files {
		fileCommits, err := s.git.FileLog(ctx, dest, file)
		if err != nil {
			return nil, err
		}
		for hash, commit := range fileCommits {
			if commit.Timestamp < minTS {
				continue
			}
			if !s.cfg.LimitDate.IsZero() && commit.Timestamp > s.cfg.LimitDate.Unix() {
				continue
			}
			// Keep the smallest reflog index when several files saw the
			// same commit, so the union stays deterministic.
			if existing, ok := commits[hash]; ok && existing.ReflogIndex <= commit.ReflogIndex {
				continue
			}
			commits[hash] = commit
		}
	}
	return commits, nil
}

// minTimestamp resolves the per-repository scrape cutoff. Repositories
// without a cutoff are scraped from their first commit.
func minTimestamp(repoName string) (int64, error) {
	cutoff, ok := schema.MinDates[repoName]
	if !ok {
		return 0, nil
	}
	t, err := schema.ParseArtifactDate(cutoff)
	if err != nil {
		return 0, fmt.Errorf("bad min date for %s: %w", repoName, err)
	}
	return t.Unix(), nil
}

// fileAt returns the contents of file at the given commit, going through
// the scrape cache when one is configured. A false return means the file
// did not exist at that commit. Blob contents are immutable per
// (commit, path), so cache entries never go stale.
func (s *Scraper) fileAt(ctx context.Context, dest, repoName, hash, file string) ([]byte, bool) {
	var store contract.CacheStore
	if s.cache != nil {
		store = s.cache.GetScrapeStore()
	}
	key := repoName + ":" + hash + ":" + file

	if store != nil {
		if data, _, err := store.Get(key); err == nil && data != nil {
			return data, true
		}
	}

	data, err := s.git.ShowFile(ctx, dest, hash, file)
	if err != nil {
		// The commit touched the file by deleting it, or the file predates
		// this path. Either way the item set at this commit excludes it.
		return nil, false
	}
	if store != nil {
		_ = store.Set(key, data, time.Now().Unix())
	}
	return data, true
}
