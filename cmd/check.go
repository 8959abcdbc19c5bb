package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mozdata/probescraper/core"
	"github.com/mozdata/probescraper/internal/contract"
	"github.com/mozdata/probescraper/internal/emailer"
	"github.com/mozdata/probescraper/internal/iocache"
	"github.com/mozdata/probescraper/internal/parsers"
	"github.com/mozdata/probescraper/internal/scraper"
	"github.com/mozdata/probescraper/schema"
)

// checkCmd runs the duplicate and expiry checks for CI/CD gating.
var checkCmd = &cobra.Command{
	Use:   "check [repositories-file]",
	Short: "Run duplicate and expiry checks without publishing artifacts.",
	Long: `Scrape the configured repositories and run the metric health checks,
failing with a non-zero exit code when problems are found.

Two checks run:
- Duplicates: a metric identifier defined both by an application and one
  of its dependency libraries (or by two of its libraries)
- Expiry: metrics whose expires date falls within the next two weeks,
  were manually expired, or match the target application version

No artifacts are written. Alert emails are still queued to the email
file (or printed with --dry-run) so owners get notified from CI.

Examples:
  # Gate a pipeline on metric health
  probescraper check repositories.yaml --dry-run

  # Include version-based expiry for an upcoming release
  probescraper check repositories.yaml --target-version 121`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runCheck(rootCtx)
	},
}

// runCheck scrapes and evaluates both health checks, reporting an error
// when either finds a problem so CI pipelines fail.
func runCheck(ctx context.Context) error {
	repos, err := parsers.ParseRepositories(cfg.RepositoriesFile)
	if err != nil {
		return err
	}

	s := scraper.New(cfg, contract.NewLocalGitClient(), iocache.Manager)
	results := s.ScrapeAll(ctx, repos)

	metricsByRepo := make(map[string]map[string]*schema.ItemHistory, len(results))
	for name, result := range results {
		metricsByRepo[name] = result.Histories[schema.MetricsKind]
	}

	emails := emailer.New(cfg.EmailFile, cfg.DryRun)
	duplicates, err := core.CheckDuplicateMetrics(repos, metricsByRepo, emails.Emails())
	if err != nil {
		return err
	}
	expired := core.CheckExpiredMetrics(repos, metricsByRepo, cfg.TargetVersion, time.Now(), emails.Emails())

	if err := emails.Flush(); err != nil {
		return err
	}

	switch {
	case duplicates && expired:
		return fmt.Errorf("duplicate and expiring metrics detected")
	case duplicates:
		return fmt.Errorf("duplicate metric identifiers detected")
	case expired:
		return fmt.Errorf("expiring metrics detected")
	}
	fmt.Println("All metric checks passed.")
	return nil
}
