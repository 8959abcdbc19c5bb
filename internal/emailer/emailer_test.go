package emailer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mozdata/probescraper/schema"
)

func TestFlushAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emails.yaml")
	e := New(path, false)

	e.Add("expired_metrics_fenix", schema.Email{
		Subject:    "Glean: Expired metrics detected",
		Message:    "Some metrics expired.",
		Recipients: []string{"fenix-team@example.com"},
	})
	e.Add("duplicate_metrics_fenix", schema.Email{
		Subject:    "Glean: Duplicate metric identifiers detected",
		Message:    "Some metrics collide.",
		Recipients: []string{"fenix-team@example.com", "glean-team@example.com"},
	})
	require.NoError(t, e.Flush())

	back, err := Load(path)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, "Glean: Expired metrics detected", back["expired_metrics_fenix"].Subject)
	assert.Equal(t, []string{"fenix-team@example.com", "glean-team@example.com"}, back["duplicate_metrics_fenix"].Recipients)
}

func TestAddReplacesSameKey(t *testing.T) {
	e := New(filepath.Join(t.TempDir(), "emails.yaml"), false)
	e.Add("key", schema.Email{Subject: "first"})
	e.Add("key", schema.Email{Subject: "second"})

	require.Len(t, e.Emails(), 1)
	assert.Equal(t, "second", e.Emails()["key"].Subject)
}

func TestFlushEmptyWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emails.yaml")
	e := New(path, false)
	require.NoError(t, e.Flush())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDryRunSkipsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emails.yaml")
	e := New(path, true)
	e.Add("key", schema.Email{Subject: "subject", Recipients: []string{"a@example.com"}})
	require.NoError(t, e.Flush())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "cannot read email file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "malformed email file")
}
