package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mozdata/probescraper/schema"
)

// exportCmd scrapes and writes a single Parquet file for analysis.
var exportCmd = &cobra.Command{
	Use:   "export [repositories-file]",
	Short: "Export merged item histories to a Parquet file.",
	Long: `Scrape the configured repositories and write every history entry of
every metric, ping and tag as one flat Parquet row set.

Each row is a maximal run of commits over which one item's definition
stayed unchanged, with the commit interval bounds, timestamps and
reflog indexes as columns. This is the shape BI and notebook tooling
want for churn and lifetime analysis.

Requires --output-file. The health checks do not run; use the check
command for gating.

Examples:
  # Export everything for notebook analysis
  probescraper export repositories.yaml --output-file histories.parquet

  # Export a single repository
  probescraper export repositories.yaml --repos fenix --output-file fenix.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		if cfg.OutputFile == "" {
			return fmt.Errorf("--output-file is required for export")
		}
		cfg.Output = schema.ParquetOut
		return runScrape(rootCtx, true, false)
	},
}
