package schema

import "time"

// Keys used in the published JSON artifacts. The names are part of the
// external contract consumed by downstream schema generators, so they
// must never change.
const (
	NameKey     = "name"
	TypeKey     = "type"
	HistoryKey  = "history"
	CommitsKey  = "git-commits"
	DatesKey    = "dates"
	ReflogKey   = "reflog-index"
	InSourceKey = "in-source"
)

// DateFormat is the human-readable timestamp layout used for the
// first/last dates of every history entry.
const DateFormat = "2006-01-02 15:04:05"

// FormatTimestamp renders a UTC unix timestamp in the artifact date format.
func FormatTimestamp(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(DateFormat)
}

// ParseArtifactDate parses a timestamp previously rendered by
// FormatTimestamp.
func ParseArtifactDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, time.UTC)
}

// MinDates holds per-repository scrape cutoffs. Commits older than the
// cutoff produced files that are not schema-compatible with today's
// pipeline, so they are skipped entirely. Changing these dates can cause
// files that had metrics to stop being scraped, which breaks downstream
// schema generation.
var MinDates = map[string]string{
	"glean":            "2019-04-11 00:00:00",
	"fenix":            "2019-06-04 00:00:00",
	"reference-browser": "2019-04-01 00:00:00",
	"firefox-desktop":  "2020-07-29 00:00:00",
	"glean-js":         "2020-09-21 13:35:00",
}
