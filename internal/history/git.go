// # internal/history/git.go
package history

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrNotRepository is returned when the working directory is not inside a git
// repository.
var ErrNotRepository = errors.New("not a git repository")

type Commit struct {
	Hash    string
	Date    time.Time
	Message string
	Author  string
}

// Provider abstracts the version control plumbing the drift engine needs.
// History retrieval fails soft: on any git failure the methods return empty
// values and the caller treats the file as having no usable history.
type Provider interface {
	IsRepo(ctx context.Context) bool
	FileHistory(ctx context.Context, path string, limit int, since time.Time) []Commit
	FileDiff(ctx context.Context, path, fromRev, toRev string) string
	FileAtRevision(ctx context.Context, path, rev string) []byte
	LastModified(ctx context.Context, path string) time.Time
}

// Git shells out to the git CLI, pinned to one repository root. All file
// paths are resolved relative to the root before being handed to git.
type Git struct {
	root string
}

// Field separator for --format parsing; never appears in commit metadata.
const gitFieldSep = "\x1f"

func NewGit(ctx context.Context, dir string) (*Git, error) {
	root := runGit(ctx, dir, "rev-parse", "--show-toplevel")
	if root == "" {
		return nil, ErrNotRepository
	}
	return &Git{root: root}, nil
}

func (g *Git) Root() string { return g.root }

func (g *Git) IsRepo(ctx context.Context) bool {
	return runGit(ctx, g.root, "rev-parse", "--git-dir") != ""
}

func (g *Git) FileHistory(ctx context.Context, path string, limit int, since time.Time) []Commit {
	args := []string{"log", "--follow", "--format=%H" + gitFieldSep + "%cI" + gitFieldSep + "%an" + gitFieldSep + "%s"}
	if limit > 0 {
		args = append(args, "-n", strconv.Itoa(limit))
	}
	if !since.IsZero() {
		args = append(args, "--since="+since.Format(time.RFC3339))
	}
	args = append(args, "--", g.relPath(path))

	return ParseHistory(runGit(ctx, g.root, args...))
}

func (g *Git) FileDiff(ctx context.Context, path, fromRev, toRev string) string {
	return runGit(ctx, g.root, "diff", fromRev, toRev, "--", g.relPath(path))
}

// FileAtRevision returns the file's full text as it existed at the given
// revision, or nil when the revision or path is unknown.
func (g *Git) FileAtRevision(ctx context.Context, path, rev string) []byte {
	return runGitRaw(ctx, g.root, "show", rev+":"+g.relPath(path))
}

func (g *Git) LastModified(ctx context.Context, path string) time.Time {
	raw := runGit(ctx, g.root, "log", "-1", "--format=%cI", "--", g.relPath(path))
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func (g *Git) relPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(g.root, abs)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// ParseHistory decodes the field-separated git log output, most recent
// first. Malformed lines are dropped.
func ParseHistory(raw string) []Commit {
	if raw == "" {
		return nil
	}
	var commits []Commit
	for _, line := range strings.Split(raw, "\n") {
		fields := strings.Split(line, gitFieldSep)
		if len(fields) != 4 || fields[0] == "" {
			continue
		}
		date, err := time.Parse(time.RFC3339, fields[1])
		if err != nil {
			continue
		}
		commits = append(commits, Commit{
			Hash:    fields[0],
			Date:    date.UTC(),
			Author:  fields[2],
			Message: fields[3],
		})
	}
	return commits
}

func runGit(ctx context.Context, dir string, args ...string) string {
	return strings.TrimSpace(string(runGitRaw(ctx, dir, args...)))
}

func runGitRaw(ctx context.Context, dir string, args ...string) []byte {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil
	}
	return stdout.Bytes()
}
