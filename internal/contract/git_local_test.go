package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLine(t *testing.T) {
	commit, err := parseLogLine("abc123:1560000000", 4)
	require.NoError(t, err)
	assert.Equal(t, "abc123", commit.Hash)
	assert.EqualValues(t, 1560000000, commit.Timestamp)
	assert.Equal(t, 4, commit.ReflogIndex)
}

func TestParseLogLineStripsQuotes(t *testing.T) {
	commit, err := parseLogLine(`"abc123:1560000000"`, 0)
	require.NoError(t, err)
	assert.Equal(t, "abc123", commit.Hash)
}

func TestParseLogLineErrors(t *testing.T) {
	_, err := parseLogLine("no-separator", 0)
	assert.ErrorContains(t, err, "missing separator")

	_, err = parseLogLine("abc123:not-a-timestamp", 0)
	assert.ErrorContains(t, err, "bad timestamp")
}

func TestSelectOutputFile(t *testing.T) {
	f, err := SelectOutputFile("")
	require.NoError(t, err)
	assert.Equal(t, "/dev/stdout", f.Name())
}
