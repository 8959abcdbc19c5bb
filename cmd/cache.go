package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mozdata/probescraper/internal/contract"
	"github.com/mozdata/probescraper/internal/iocache"
	"github.com/mozdata/probescraper/schema"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get cache-related config values
	backend := schema.CacheBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateCacheConnectionString(backend, connStr); err != nil {
		return err
	}

	// Initialize caching with the loaded config
	if err := iocache.InitCaching(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr

	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead
// of the full sharedSetup used by scrape commands. This avoids repository
// file validation for simple cache operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the scraped blob cache (improves performance)",
	Long: `Manage the blob cache that speeds up repeated scrapes.

Probescraper caches the contents of each definition file at each commit,
keyed by (repository, commit, path). Blobs are immutable, so a rerun of
the same repositories reads everything from the cache instead of git.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None

Subcommands:
  status  - Show cache statistics and connection info
  clear   - Remove all cached data
  migrate - Run cache schema migrations

Examples:
  # Check cache status
  probescraper cache status

  # Clear cache after repository history was rewritten
  probescraper cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached blob data",
	Long: `Delete all cached blob data from the configured backend.

Use this when:
- Repository history was rewritten (rebase, force push)
- Cache may be stale or corrupted
- Reclaiming disk space after removing repositories

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear SQLite cache (default)
  probescraper cache clear

  # Clear MySQL cache (set connection string via env variable)
  PROBESCRAPER_CACHE_BACKEND=mysql PROBESCRAPER_CACHE_DB_CONNECT="..." probescraper cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(cfg.CacheBackend, iocache.GetDBFilePath(), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the blob cache.

Displays:
- Backend type and location
- Total number of cached blobs
- Cache database size

Examples:
  # Check cache status
  probescraper cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetScrapeStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(status)
	},
}

// cacheMigrateCmd runs cache schema migrations.
var cacheMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run cache database schema migrations",
	Long: `Apply or roll back schema migrations for the blob cache database.

By default migrates to the latest schema version. Use --migrate-version
to pin a specific version, or 0 to roll everything back.

Examples:
  # Migrate to the latest schema
  probescraper cache migrate

  # Roll back all migrations
  probescraper cache migrate --migrate-version 0`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		// Migration opens its own connection; only config loading and
		// validation are needed here.
		if err := loadConfigFile(); err != nil {
			return err
		}
		backend := schema.CacheBackend(viper.GetString("cache-backend"))
		connStr := viper.GetString("cache-db-connect")
		if err := contract.ValidateCacheConnectionString(backend, connStr); err != nil {
			return err
		}
		cfg.CacheBackend = backend
		cfg.CacheDBConnect = connStr
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		target := viper.GetInt("migrate-version")
		if err := iocache.MigrateCache(cfg.CacheBackend, cfg.CacheDBConnect, target); err != nil {
			contract.LogFatal("Failed to migrate cache", err)
		}
	},
}
