package core

import (
	"testing"

	"github.com/mozdata/probescraper/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metricHistory(name string, inSource bool, emails ...string) *schema.ItemHistory {
	addrs := make([]any, 0, len(emails))
	for _, e := range emails {
		addrs = append(addrs, e)
	}
	return &schema.ItemHistory{
		Name:     name,
		InSource: inSource,
		History: []*schema.HistoryEntry{
			{
				Fields: schema.Definition{
					"expires":             "never",
					"notification_emails": addrs,
				},
				First: schema.Commit{Hash: "c1", Timestamp: 100},
				Last:  schema.Commit{Hash: "c1", Timestamp: 100},
			},
		},
	}
}

func duplicateFixture() ([]schema.Repository, map[string]map[string]*schema.ItemHistory) {
	repos := []schema.Repository{
		{
			Name:               "app",
			NotificationEmails: []string{"repo-owner@example.com"},
			Dependencies:       []string{"org.example:shared-lib"},
		},
		{
			Name:               "shared-lib",
			NotificationEmails: []string{"lib-owner@example.com"},
			LibraryNames:       []string{"org.example:shared-lib"},
		},
	}
	metrics := map[string]map[string]*schema.ItemHistory{
		"app": {
			"example.duration": metricHistory("example.duration", true, "alice@example.com"),
			"example.os":       metricHistory("example.os", true, "bob@example.com"),
		},
		"shared-lib": {
			"example.duration": metricHistory("example.duration", true, "charlie@example.com"),
		},
	}
	return repos, metrics
}

func TestCheckDuplicateMetrics(t *testing.T) {
	repos, metrics := duplicateFixture()
	emails := make(map[string]schema.Email)

	found, err := CheckDuplicateMetrics(repos, metrics, emails)
	require.NoError(t, err)
	assert.True(t, found)

	email, ok := emails["duplicate_metrics_app"]
	require.True(t, ok)
	assert.Contains(t, email.Message, `"example.duration" defined more than once`)
	assert.NotContains(t, email.Message, "example.os")
	assert.ElementsMatch(t, []string{
		"alice@example.com",
		"charlie@example.com",
		"repo-owner@example.com",
		"lib-owner@example.com",
	}, email.Recipients)
}

func TestCheckDuplicateMetricsIgnoresRemovedDefinitions(t *testing.T) {
	repos, metrics := duplicateFixture()
	// The library's copy was deleted; no live collision remains.
	metrics["shared-lib"]["example.duration"].InSource = false
	emails := make(map[string]schema.Email)

	found, err := CheckDuplicateMetrics(repos, metrics, emails)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, emails)
}

func TestCheckDuplicateMetricsMissingDependency(t *testing.T) {
	repos := []schema.Repository{
		{Name: "app", Dependencies: []string{"org.example:unknown"}},
	}
	emails := make(map[string]schema.Email)

	_, err := CheckDuplicateMetrics(repos, map[string]map[string]*schema.ItemHistory{}, emails)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingDependency)
	assert.Contains(t, err.Error(), "org.example:unknown")
}
