package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mozdata/probescraper/schema"
)

// DefaultExpireDays is how far ahead the expiry check looks: metrics
// expiring within this window are reported alongside already expired
// ones, giving owners time to renew data review before collection stops.
const DefaultExpireDays = 14

const expiredMetricsTemplate = `Each metric in the following list from %s will expire in the next %d days or has already expired.

%s

What to do about this:

1. If the metric is no longer needed, remove it from its metrics.yaml file.
2. If the metric is still required, resubmit a data review and extend its
   expiration date.

What happens if you don't fix this:

The metrics listed above will stop collecting data from builds built after
this expiration date, and you will continue to get this e-mail as a
reminder.

[1] The correct metrics.yaml is in this list:
%s

This is an automated message sent from probe-scraper.
`

// expiresDateFormat is the layout of the metrics.yaml expires field when
// it carries a date.
const expiresDateFormat = "2006-01-02"

// CheckExpiredMetrics reports metrics whose expires field names a date on
// or before today plus expireDays, or which were manually expired, or
// whose expire-by-version number matches targetVersion (when a target
// version is known; pass 0 to skip version-based expiry). Deprecated
// repositories are skipped entirely.
//
// One alert email per affected repository is appended to emails, keyed by
// "expired_metrics_<repo>". Returns true if any expiring metrics were
// found.
func CheckExpiredMetrics(repos []schema.Repository, metricsByRepo map[string]map[string]*schema.ItemHistory, targetVersion int, today time.Time, emails map[string]schema.Email) bool {
	cutoff := today.UTC().AddDate(0, 0, DefaultExpireDays)

	found := false
	for _, repo := range repos {
		if repo.Deprecated {
			continue
		}

		addresses := make(map[string]bool)
		for _, addr := range repo.NotificationEmails {
			addresses[addr] = true
		}

		var expired []string
		for name, entry := range CurrentMetrics(metricsByRepo[repo.Name]) {
			line, ok := expiryLine(name, entry.Fields, targetVersion, cutoff)
			if !ok {
				continue
			}
			expired = append(expired, line)
			for _, addr := range stringList(entry.Fields, "notification_emails") {
				addresses[addr] = true
			}
		}
		if len(expired) == 0 {
			continue
		}

		found = true
		sort.Strings(expired)
		var yamlURLs []string
		for _, file := range repo.MetricsFiles {
			yamlURLs = append(yamlURLs, fmt.Sprintf("%s/tree/HEAD/%s", repo.URL, file))
		}
		emails["expired_metrics_"+repo.Name] = schema.Email{
			Subject:    fmt.Sprintf("Glean: Expired metrics in %s", repo.Name),
			Message:    fmt.Sprintf(expiredMetricsTemplate, repo.Name, DefaultExpireDays, strings.Join(expired, "\n"), strings.Join(yamlURLs, "\n")),
			Recipients: sortedKeys(addresses),
		}
	}

	return found
}

// expiryLine decides whether one metric is expired or about to expire
// and renders its report line. The expires field supports "never",
// manual "expired", an expire-by-version integer, and an ISO date.
func expiryLine(name string, fields schema.Definition, targetVersion int, cutoff time.Time) (string, bool) {
	switch expires := fields["expires"].(type) {
	case nil:
		return "", false
	case string:
		switch expires {
		case "never":
			return "", false
		case "expired":
			return fmt.Sprintf("- %s manually expired", name), true
		}
		date, err := time.ParseInLocation(expiresDateFormat, expires, time.UTC)
		if err != nil {
			// Not a date; nothing to check.
			return "", false
		}
		if !date.After(cutoff) {
			return fmt.Sprintf("- %s on %s", name, expires), true
		}
		return "", false
	case int:
		if targetVersion != 0 && expires == targetVersion {
			return fmt.Sprintf("- %s in version %d", name, targetVersion), true
		}
		return "", false
	default:
		return "", false
	}
}
