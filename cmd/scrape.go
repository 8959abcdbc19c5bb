package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mozdata/probescraper/core"
	"github.com/mozdata/probescraper/internal/contract"
	"github.com/mozdata/probescraper/internal/emailer"
	"github.com/mozdata/probescraper/internal/iocache"
	"github.com/mozdata/probescraper/internal/outwriter"
	"github.com/mozdata/probescraper/internal/parquet"
	"github.com/mozdata/probescraper/internal/parsers"
	"github.com/mozdata/probescraper/internal/scraper"
	"github.com/mozdata/probescraper/schema"
)

// defaultParquetFile is used when parquet output is requested without an
// explicit --output-file.
const defaultParquetFile = "glean-histories.parquet"

// scrapeCmd scrapes every configured repository and publishes artifacts.
var scrapeCmd = &cobra.Command{
	Use:   "scrape [repositories-file]",
	Short: "Scrape repositories and publish their item histories.",
	Long: `Walk the commit history of every configured repository and publish
the deduplicated change history of each metric, ping and tag it defines.

For every repository this:
- Clones it into the cache directory (or reuses an existing clone)
- Collects every commit that touched a metrics, pings or tags file
- Parses the definition files at each of those commits
- Merges adjacent identical definitions into history entries
- Writes one artifact file per item kind under the output directory

Parse failures in individual files are collected per repository and
queued as alert emails rather than aborting the run.

Examples:
  # Scrape everything listed in repositories.yaml
  probescraper scrape repositories.yaml

  # Scrape two repositories into a custom directory
  probescraper scrape repositories.yaml --repos fenix,firefox-desktop -o out

  # Reproduce a historical state
  probescraper scrape repositories.yaml --limit-date 2023-06-01

  # Columnar output for analysis instead of JSON artifacts
  probescraper scrape repositories.yaml --output parquet --output-file histories.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runScrape(rootCtx, true, true); err != nil {
			contract.LogFatal("Cannot run scrape", err)
		}
	},
}

// runScrape drives the full scrape pipeline. Artifact writing and the
// post-scrape checks can be toggled so the check and export commands can
// reuse the pipeline.
func runScrape(ctx context.Context, writeArtifacts, runChecks bool) error {
	start := time.Now()

	repos, err := parsers.ParseRepositories(cfg.RepositoriesFile)
	if err != nil {
		return err
	}

	s := scraper.New(cfg, contract.NewLocalGitClient(), iocache.Manager)
	results := s.ScrapeAll(ctx, repos)

	emails := emailer.New(cfg.EmailFile, cfg.DryRun)
	ow := outwriter.NewOutWriter()

	summaries := make([]schema.RepoSummary, 0, len(results))
	metricsByRepo := make(map[string]map[string]*schema.ItemHistory, len(results))
	var parquetRows []parquet.HistoryRow

	// Walk the repository list rather than the result map so output files
	// come out in a reproducible order.
	for _, repo := range repos {
		result, ok := results[repo.Name]
		if !ok {
			continue
		}
		summaries = append(summaries, result.Summary())
		metricsByRepo[repo.Name] = result.Histories[schema.MetricsKind]
		recordScrapeErrors(emails, result)

		if !writeArtifacts {
			continue
		}
		switch cfg.Output {
		case schema.ParquetOut:
			parquetRows = append(parquetRows, parquet.ConvertResult(repo.Name, result.Histories)...)
		default:
			if err := ow.WriteRepo(cfg, result.Repo, result.Histories); err != nil {
				return err
			}
		}
	}

	if writeArtifacts && cfg.Output == schema.ParquetOut {
		path := cfg.OutputFile
		if path == "" {
			path = defaultParquetFile
		}
		if err := parquet.WriteHistoryParquet(parquetRows, path); err != nil {
			return err
		}
	}

	if runChecks {
		if _, err := core.CheckDuplicateMetrics(repos, metricsByRepo, emails.Emails()); err != nil {
			return err
		}
		if cfg.CheckExpiry {
			core.CheckExpiredMetrics(repos, metricsByRepo, cfg.TargetVersion, time.Now(), emails.Emails())
		}
	}

	if err := emails.Flush(); err != nil {
		return err
	}
	return ow.WriteSummary(summaries, cfg, time.Since(start))
}

// recordScrapeErrors queues one alert per repository whose scrape hit
// parse or clone problems, addressed to the repository contacts.
func recordScrapeErrors(emails *emailer.Emailer, result *scraper.RepoResult) {
	if len(result.Errors) == 0 {
		return
	}
	lines := make([]string, 0, len(result.Errors))
	for _, err := range result.Errors {
		lines = append(lines, fmt.Sprintf("- %v", err))
	}
	sort.Strings(lines)
	emails.Add("scrape_errors_"+result.Repo.Name, schema.Email{
		Subject: fmt.Sprintf("Glean: Scrape errors in %s", result.Repo.Name),
		Message: fmt.Sprintf("The following errors occurred while scraping %s:\n\n%s\n\nThis is an automated message sent from probe-scraper.\n",
			result.Repo.Name, strings.Join(lines, "\n")),
		Recipients: result.Repo.NotificationEmails,
	})
}
