package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mozdata/probescraper/schema"
)

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q: %s", repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// Clone implements the GitClient interface.
func (c *LocalGitClient) Clone(ctx context.Context, url, branch, dest string) error {
	args := []string{"clone", "--quiet"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, url, dest)
	cmd := exec.CommandContext(ctx, "git", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git clone %s failed: %s", url, strings.TrimSpace(string(out)))
	}
	return nil
}

// fileLogFormat renders one "<hash>:<committer timestamp>" line per commit.
const fileLogFormat = "--format=%H:%ct"

// FileLog implements the GitClient interface. The returned commits carry
// their enumeration position as the reflog index; commits from one
// merged pull request often share a timestamp, and the index keeps their
// ordering deterministic.
func (c *LocalGitClient) FileLog(ctx context.Context, repoPath, file string) (map[string]schema.Commit, error) {
	out, err := c.Run(ctx, repoPath, "log", fileLogFormat, "--", file)
	if err != nil {
		return nil, err
	}
	commits := make(map[string]schema.Commit)
	for index, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line == "" {
			continue
		}
		commit, err := parseLogLine(line, index)
		if err != nil {
			return nil, fmt.Errorf("unparseable log line for %s: %w", file, err)
		}
		commits[commit.Hash] = commit
	}
	return commits, nil
}

// HeadCommit implements the GitClient interface.
func (c *LocalGitClient) HeadCommit(ctx context.Context, repoPath string) (schema.Commit, error) {
	out, err := c.Run(ctx, repoPath, "log", "-n", "1", fileLogFormat)
	if err != nil {
		return schema.Commit{}, err
	}
	return parseLogLine(strings.TrimSpace(string(out)), 0)
}

// ShowFile implements the GitClient interface.
func (c *LocalGitClient) ShowFile(ctx context.Context, repoPath, hash, file string) ([]byte, error) {
	return c.Run(ctx, repoPath, "show", hash+":"+file)
}

// parseLogLine splits one "<hash>:<timestamp>" log line into a Commit.
func parseLogLine(line string, index int) (schema.Commit, error) {
	line = strings.Trim(line, `"`)
	hash, tsStr, ok := strings.Cut(line, ":")
	if !ok {
		return schema.Commit{}, fmt.Errorf("missing separator in %q", line)
	}
	ts, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return schema.Commit{}, fmt.Errorf("bad timestamp in %q: %w", line, err)
	}
	return schema.Commit{Hash: hash, Timestamp: ts, ReflogIndex: index}, nil
}
