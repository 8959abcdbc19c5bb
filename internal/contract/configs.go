package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mozdata/probescraper/schema"
)

// Default values for configuration.
const (
	DefaultEmailFile = "emails.yaml"
	DefaultOutputDir = "probe-data"
)

// DefaultWorkers is the default number of repositories scraped concurrently.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Config holds the validated runtime configuration for a scrape run.
type Config struct {
	RepositoriesFile string    // Path to repositories.yaml
	OutputDir        string    // Directory the JSON artifacts are written to
	CacheDir         string    // Working directory for repository clones
	FilterRepos      []string  // If non-empty, only these repositories are scraped
	Workers          int       // Number of repositories processed concurrently
	DryRun           bool      // Construct alerts without recording them for delivery
	CheckExpiry      bool      // Run the metric expiry check after scraping
	TargetVersion    int       // Expire-by-version target; 0 disables version expiry
	LimitDate        time.Time // Skip commits after this UTC date (zero = no limit)
	EmailFile        string    // Where queued alert emails are recorded
	Output           schema.OutputFormat
	OutputFile       string // Optional path for single-file output formats
	Width            int    // Terminal width override (0 = auto-detect)
	UseColors        bool   // Enable colored output in the summary table

	CacheBackend   schema.CacheBackend
	CacheDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env,
// config file). Viper unmarshals into this struct.
type ConfigRawInput struct {
	// Set manually from positional args, so no tag
	RepositoriesFileStr string

	OutDir         string `mapstructure:"out-dir"`
	CacheDir       string `mapstructure:"cache-dir"`
	FilterRepos    string `mapstructure:"repos"`
	Workers        int    `mapstructure:"workers"`
	DryRun         bool   `mapstructure:"dry-run"`
	CheckExpiry    bool   `mapstructure:"check-expiry"`
	TargetVersion  int    `mapstructure:"target-version"`
	LimitDate      string `mapstructure:"limit-date"`
	EmailFile      string `mapstructure:"email-file"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
}

// ProcessAndValidate performs all parsing and validation on the raw
// inputs and populates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processLimitDate(cfg, input); err != nil {
		return err
	}
	if err := processCacheBackend(cfg, input); err != nil {
		return err
	}
	return nil
}

func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	if input.RepositoriesFileStr == "" {
		return fmt.Errorf("repositories file is required")
	}
	abs, err := filepath.Abs(input.RepositoriesFileStr)
	if err != nil {
		return fmt.Errorf("invalid repositories file path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("repositories file not found: %s", abs)
	}
	cfg.RepositoriesFile = abs

	cfg.OutputDir = input.OutDir
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	cfg.CacheDir = input.CacheDir
	if cfg.CacheDir == "" {
		cfg.CacheDir, err = os.MkdirTemp("", "probescraper")
		if err != nil {
			return fmt.Errorf("cannot create cache dir: %w", err)
		}
	}

	if input.FilterRepos != "" {
		for _, name := range strings.Split(input.FilterRepos, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.FilterRepos = append(cfg.FilterRepos, name)
			}
		}
	}

	cfg.Workers = input.Workers
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers
	}
	cfg.DryRun = input.DryRun
	cfg.CheckExpiry = input.CheckExpiry
	cfg.TargetVersion = input.TargetVersion
	cfg.EmailFile = input.EmailFile
	if cfg.EmailFile == "" {
		cfg.EmailFile = DefaultEmailFile
	}
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	switch input.Output {
	case "", string(schema.JSONOut):
		cfg.Output = schema.JSONOut
	case string(schema.ParquetOut):
		cfg.Output = schema.ParquetOut
	default:
		return fmt.Errorf("unsupported output format: %s", input.Output)
	}

	cfg.UseColors = parseBoolish(input.Color, true)
	return nil
}

func processLimitDate(cfg *Config, input *ConfigRawInput) error {
	if input.LimitDate == "" {
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", input.LimitDate, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid limit-date %q, want YYYY-MM-DD: %w", input.LimitDate, err)
	}
	cfg.LimitDate = t
	return nil
}

func processCacheBackend(cfg *Config, input *ConfigRawInput) error {
	backend := schema.CacheBackend(input.CacheBackend)
	if input.CacheBackend == "" {
		backend = schema.SQLiteBackend
	}
	if err := ValidateCacheConnectionString(backend, input.CacheDBConnect); err != nil {
		return err
	}
	cfg.CacheBackend = backend
	cfg.CacheDBConnect = input.CacheDBConnect
	return nil
}

// ValidateCacheConnectionString checks that the connection string fits
// the chosen cache backend. Local backends need none; the server
// backends refuse to start with an obviously unusable one.
func ValidateCacheConnectionString(backend schema.CacheBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		// No connection string needed.
	case schema.MySQLBackend:
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("cache-db-connect for %s must look like user:pass@tcp(host:port)/dbname", backend)
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
	default:
		return fmt.Errorf("unsupported cache backend: %s", backend)
	}
	return nil
}

// parseBoolish interprets yes/no style flag values, falling back to the
// given default on anything unrecognized.
func parseBoolish(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "on":
		return true
	case "no", "false", "0", "off":
		return false
	default:
		return def
	}
}

// WantsRepo reports whether the given repository survives the repo
// filter. An empty filter keeps everything.
func (c *Config) WantsRepo(name string) bool {
	if len(c.FilterRepos) == 0 {
		return true
	}
	for _, want := range c.FilterRepos {
		if want == name {
			return true
		}
	}
	return false
}
