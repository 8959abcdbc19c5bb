package outwriter

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"

	"github.com/mozdata/probescraper/internal/contract"
	"github.com/mozdata/probescraper/schema"
)

// writeSummaryTable renders the per-repository scrape summary.
func writeSummaryTable(summaries []schema.RepoSummary, cfg *contract.Config, duration time.Duration) error {
	file, err := contract.SelectOutputFile(cfg.OutputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}
	return renderSummary(file, summaries, cfg, duration)
}

func renderSummary(writer io.Writer, summaries []schema.RepoSummary, cfg *contract.Config, duration time.Duration) error {
	sorted := make([]schema.RepoSummary, len(summaries))
	copy(sorted, summaries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Repository", "Commits", "Metrics", "Pings", "Tags", "Errors"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := getMaxTableNameWidth(cfg)
	var data [][]string
	totals := schema.RepoSummary{}
	for _, s := range sorted {
		data = append(data, []string{
			truncateName(s.Name, nameWidth),
			strconv.Itoa(s.Commits),
			strconv.Itoa(s.Metrics),
			strconv.Itoa(s.Pings),
			strconv.Itoa(s.Tags),
			formatErrorCount(s.Errors, cfg.UseColors),
		})
		totals.Commits += s.Commits
		totals.Metrics += s.Metrics
		totals.Pings += s.Pings
		totals.Tags += s.Tags
		totals.Errors += s.Errors
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Scraped %d repositories (commits: %d, metrics: %d, pings: %d, tags: %d, errors: %d)\n",
		len(sorted), totals.Commits, totals.Metrics, totals.Pings, totals.Tags, totals.Errors); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Scrape completed in %v with %d workers. Cache backend: %s\n",
		duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// formatErrorCount highlights non-zero error counts.
func formatErrorCount(errors int, useColors bool) string {
	s := strconv.Itoa(errors)
	if !useColors {
		return s
	}
	if errors > 0 {
		return contract.ErrorColor.Sprint(s)
	}
	return contract.OkColor.Sprint(s)
}

// getMaxTableNameWidth calculates the maximum width for repository names
// in table output based on terminal width.
func getMaxTableNameWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		// Get terminal width
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for the five numeric columns with borders and padding
	available := termWidth - 55
	if available < 15 {
		// Minimum reasonable name width
		return 15
	}
	if available > 50 {
		// Maximum name width to prevent overly wide tables
		return 50
	}
	return available
}

// truncateName shortens a repository name to fit the table, keeping the
// tail which carries the distinguishing suffix.
func truncateName(name string, width int) string {
	if len(name) <= width {
		return name
	}
	if width <= 3 {
		return name[:width]
	}
	return "..." + name[len(name)-(width-3):]
}
