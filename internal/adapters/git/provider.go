package git

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/duggerlink/dugger/internal/cache"
	"github.com/duggerlink/dugger/internal/domain"
	"github.com/duggerlink/dugger/internal/ports"
)

// Cache namespaces, one per queryable fact.
const (
	nsBranch    = "branch"
	nsDirty     = "dirty"
	nsUntracked = "untracked"
	nsHash      = "hash"
	nsCount     = "count"
	nsRemote    = "remote"
	nsStaged    = "staged"
	nsUnstaged  = "unstaged"
)

// TTLConfig holds the per-fact cache lifetimes. They are independently
// configurable because access patterns differ: status changes far more
// often during active editing than remote configuration.
type TTLConfig struct {
	Branch       time.Duration
	Dirty        time.Duration
	Untracked    time.Duration
	CommitHash   time.Duration
	CommitCount  time.Duration
	RemoteURL    time.Duration
	ChangedFiles time.Duration
}

// DefaultTTLConfig returns the default cache lifetimes.
func DefaultTTLConfig() TTLConfig {
	return TTLConfig{
		Branch:       60 * time.Second,
		Dirty:        30 * time.Second,
		Untracked:    30 * time.Second,
		CommitHash:   60 * time.Second,
		CommitCount:  60 * time.Second,
		RemoteURL:    120 * time.Second,
		ChangedFiles: 60 * time.Second,
	}
}

// StateProvider composes a command runner with a TTL cache to answer
// repository state queries without redundant subprocess spawns. The cache
// is owned by the provider instance; nothing about it is global.
type StateProvider struct {
	runner ports.CommandRunner
	cache  *cache.Cache[string]
	ttls   TTLConfig
}

// NewStateProvider creates a provider around the given runner.
func NewStateProvider(runner ports.CommandRunner, ttls TTLConfig) *StateProvider {
	return &StateProvider{
		runner: runner,
		cache:  cache.New[string](),
		ttls:   ttls,
	}
}

// Ensure StateProvider implements ports.GitInspector.
var _ ports.GitInspector = (*StateProvider)(nil)

// IsRepository implements ports.GitInspector. Absence of a repository is
// not an error condition for this query, so it fails open to false.
func (p *StateProvider) IsRepository(ctx context.Context, path string) bool {
	ok, _ := p.isRepository(ctx, path)
	return ok
}

// isRepository distinguishes "not a repository" (false, nil) from
// infrastructure failures, which the summary path must propagate.
func (p *StateProvider) isRepository(ctx context.Context, path string) (bool, error) {
	_, err := p.runner.Run(ctx, path, "rev-parse", "--git-dir")
	if err == nil {
		return true, nil
	}
	var execErr *domain.ToolExecutionError
	if errors.As(err, &execErr) {
		return false, nil
	}
	return false, err
}

// Summary implements ports.GitInspector. For a non-repository it
// short-circuits to the all-default snapshot without issuing further
// process calls.
func (p *StateProvider) Summary(ctx context.Context, path string) (domain.GitState, error) {
	isRepo, err := p.isRepository(ctx, path)
	if err != nil {
		return domain.GitState{}, err
	}
	if !isRepo {
		return domain.DefaultGitState(), nil
	}

	branch, err := p.Branch(ctx, path)
	if err != nil {
		return domain.GitState{}, err
	}
	dirty, err := p.IsDirty(ctx, path)
	if err != nil {
		return domain.GitState{}, err
	}
	hash, err := p.CommitHash(ctx, path)
	if err != nil {
		return domain.GitState{}, err
	}
	untracked, err := p.UntrackedFiles(ctx, path)
	if err != nil {
		return domain.GitState{}, err
	}
	count, err := p.CommitCount(ctx, path)
	if err != nil {
		return domain.GitState{}, err
	}
	remote, err := p.RemoteURL(ctx, path)
	if err != nil {
		return domain.GitState{}, err
	}

	params := domain.GitStateParams{
		IsGitRepo:      true,
		Branch:         branch,
		IsDirty:        dirty,
		CommitHash:     hash,
		UntrackedFiles: untracked,
		CommitCount:    count,
	}
	if remote != "" {
		params.RemoteURL = &remote
	}

	state, err := domain.NewGitState(params)
	if err != nil {
		return domain.GitState{}, err
	}
	return state, nil
}

// Branch implements ports.GitInspector. A repository with no commits has
// no resolvable HEAD; that degrades to "unknown" rather than failing.
func (p *StateProvider) Branch(ctx context.Context, path string) (string, error) {
	out, err := p.cached(ctx, nsBranch, path, p.ttls.Branch, []string{"rev-parse", "--abbrev-ref", "HEAD"}, domain.BranchUnknown)
	if err != nil {
		return "", err
	}
	branch := strings.TrimSpace(out)
	if branch == "HEAD" {
		return domain.BranchDetached, nil
	}
	if branch == "" {
		return domain.BranchUnknown, nil
	}
	return branch, nil
}

// IsDirty implements ports.GitInspector. Untracked files do not count as
// dirty; only modifications to tracked files do.
func (p *StateProvider) IsDirty(ctx context.Context, path string) (bool, error) {
	out, err := p.cached(ctx, nsDirty, path, p.ttls.Dirty, []string{"status", "--porcelain", "--untracked-files=no"}, "")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// CommitHash implements ports.GitInspector.
func (p *StateProvider) CommitHash(ctx context.Context, path string) (string, error) {
	out, err := p.cached(ctx, nsHash, path, p.ttls.CommitHash, []string{"rev-parse", "HEAD"}, "")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// UntrackedFiles implements ports.GitInspector.
func (p *StateProvider) UntrackedFiles(ctx context.Context, path string) ([]string, error) {
	out, err := p.cached(ctx, nsUntracked, path, p.ttls.Untracked, []string{"status", "--porcelain", "--untracked-files=normal"}, "")
	if err != nil {
		return nil, err
	}
	return parseUntracked(out), nil
}

// CommitCount implements ports.GitInspector. An empty repository has no
// HEAD to count from and degrades to zero.
func (p *StateProvider) CommitCount(ctx context.Context, path string) (int, error) {
	out, err := p.cached(ctx, nsCount, path, p.ttls.CommitCount, []string{"rev-list", "HEAD", "--count"}, "0")
	if err != nil {
		return 0, err
	}
	count, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, nil
	}
	return count, nil
}

// RemoteURL implements ports.GitInspector. No configured origin is
// expected absence and returns the empty string.
func (p *StateProvider) RemoteURL(ctx context.Context, path string) (string, error) {
	out, err := p.cached(ctx, nsRemote, path, p.ttls.RemoteURL, []string{"remote", "get-url", "origin"}, "")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ChangedFiles lists the paths of files with staged modifications. When
// nothing is staged it falls back to unstaged modifications, so the result
// always reflects what a commit would need to pick up. Both diffs are
// cached independently.
func (p *StateProvider) ChangedFiles(ctx context.Context, path string) ([]string, error) {
	staged, err := p.cached(ctx, nsStaged, path, p.ttls.ChangedFiles, []string{"diff", "--cached", "--name-only"}, "")
	if err != nil {
		return nil, err
	}
	if files := splitLines(staged); len(files) > 0 {
		return files, nil
	}

	unstaged, err := p.cached(ctx, nsUnstaged, path, p.ttls.ChangedFiles, []string{"diff", "--name-only"}, "")
	if err != nil {
		return nil, err
	}
	return splitLines(unstaged), nil
}

// Invalidate drops every cached fact for the given working directory.
func (p *StateProvider) Invalidate(path string) {
	for _, ns := range []string{nsBranch, nsDirty, nsUntracked, nsHash, nsCount, nsRemote, nsStaged, nsUnstaged} {
		p.cache.Invalidate(cache.Key(ns, path))
	}
}

// cached runs one git query through the TTL cache. A non-zero exit is
// interpreted as expected absence and degrades to fallback; infrastructure
// failures (tool missing, timeout) propagate. Degraded values are cached
// like real ones so a broken query is not retried on every read.
func (p *StateProvider) cached(ctx context.Context, ns, path string, ttl time.Duration, args []string, fallback string) (string, error) {
	return p.cache.GetOrCompute(cache.Key(ns, path), ttl, func() (string, error) {
		out, err := p.runner.Run(ctx, path, args...)
		if err != nil {
			var execErr *domain.ToolExecutionError
			if errors.As(err, &execErr) {
				return fallback, nil
			}
			return "", err
		}
		return out, nil
	})
}

// parseUntracked extracts untracked paths from porcelain status output,
// preserving the tool's reported order.
func parseUntracked(out string) []string {
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "??") {
			continue
		}
		if f := unquotePath(strings.TrimSpace(line[2:])); f != "" {
			files = append(files, f)
		}
	}
	return files
}

// splitLines breaks diff output into trimmed, non-empty path entries.
func splitLines(out string) []string {
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if f := strings.TrimSpace(line); f != "" {
			files = append(files, f)
		}
	}
	return files
}

// unquotePath undoes the C-style quoting git applies to paths with spaces
// or non-ASCII characters.
func unquotePath(path string) string {
	if len(path) >= 2 && path[0] == '"' && path[len(path)-1] == '"' {
		if unquoted, err := strconv.Unquote(path); err == nil {
			return unquoted
		}
		return path[1 : len(path)-1]
	}
	return path
}
