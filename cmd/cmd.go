// Package cmd defines the command-line interface for probescraper.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mozdata/probescraper/internal/contract"
	"github.com/mozdata/probescraper/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("out-dir", "o", contract.DefaultOutputDir, "Directory the JSON artifacts are written to")
	rootCmd.PersistentFlags().String("cache-dir", "", "Working directory for repository clones (default: a temp dir)")
	rootCmd.PersistentFlags().String("repos", "", "Comma-separated list of repository names to scrape (default: all)")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of repositories processed concurrently")
	rootCmd.PersistentFlags().Bool("dry-run", false, "Construct alert emails without recording them for delivery")
	rootCmd.PersistentFlags().Bool("check-expiry", false, "Run the metric expiry check after scraping")
	rootCmd.PersistentFlags().Int("target-version", 0, "Application version that triggers expire-by-version alerts (0 = disabled)")
	rootCmd.PersistentFlags().String("limit-date", "", "Skip commits after this UTC date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().String("email-file", contract.DefaultEmailFile, "Where queued alert emails are recorded")
	rootCmd.PersistentFlags().String("output", string(schema.JSONOut), "Output format: json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write single-file output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of cacheMigrateCmd to Viper
	cacheMigrateCmd.Flags().Int("migrate-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(cacheMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding cache migrate flags", err)
	}
}
