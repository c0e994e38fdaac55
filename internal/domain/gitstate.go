// Package domain contains the core business entities for Dugger.
// These entities represent the fundamental concepts of repository
// inspection and project health tracking and are independent of any
// external frameworks or infrastructure.
package domain

import (
	"fmt"
	"strings"
)

// Branch sentinels.
const (
	BranchNone     = "none"     // path is not a git repository
	BranchDetached = "detached" // HEAD is not on a named branch
	BranchUnknown  = "unknown"  // branch could not be determined (e.g. empty repo)
)

// GitState is a point-in-time snapshot of one repository's version-control
// status. It is immutable once constructed: a new query produces a new
// instance, never a mutation in place, so a value can be handed to multiple
// consumers without synchronization.
type GitState struct {
	IsGitRepo      bool
	Branch         string
	IsDirty        bool
	CommitHash     string
	UntrackedFiles []string
	CommitCount    int
	RemoteURL      *string
}

// GitStateParams carries the raw query results into NewGitState.
type GitStateParams struct {
	IsGitRepo      bool
	Branch         string
	IsDirty        bool
	CommitHash     string
	UntrackedFiles []string
	CommitCount    int
	RemoteURL      *string
}

// DefaultGitState returns the snapshot for a path that is not under
// version control. All fields hold their zero or sentinel values.
func DefaultGitState() GitState {
	return GitState{
		Branch:         BranchNone,
		UntrackedFiles: []string{},
	}
}

// NewGitState validates and normalizes a snapshot. It returns an
// *InvalidStateError rather than a silently malformed value when a field
// violates its documented constraint.
func NewGitState(p GitStateParams) (GitState, error) {
	if !p.IsGitRepo {
		if p.Branch != "" && p.Branch != BranchNone {
			return GitState{}, &InvalidStateError{Field: "branch", Reason: "must be \"none\" when not a repository"}
		}
		if p.IsDirty || p.CommitHash != "" || len(p.UntrackedFiles) > 0 || p.CommitCount != 0 || p.RemoteURL != nil {
			return GitState{}, &InvalidStateError{Field: "is_git_repo", Reason: "non-repository state must hold default values"}
		}
		return DefaultGitState(), nil
	}

	if p.CommitCount < 0 {
		return GitState{}, &InvalidStateError{Field: "commit_count", Reason: "must not be negative"}
	}

	hash, err := normalizeCommitHash(p.CommitHash)
	if err != nil {
		return GitState{}, err
	}
	if (hash == "") != (p.CommitCount == 0) {
		return GitState{}, &InvalidStateError{Field: "commit_hash", Reason: "must be non-empty exactly when commits exist"}
	}

	return GitState{
		IsGitRepo:      true,
		Branch:         normalizeBranch(p.Branch),
		IsDirty:        p.IsDirty,
		CommitHash:     hash,
		UntrackedFiles: normalizeUntracked(p.UntrackedFiles),
		CommitCount:    p.CommitCount,
		RemoteURL:      p.RemoteURL,
	}, nil
}

// normalizeBranch maps the symbolic "HEAD" git reports for a detached
// checkout to the detached sentinel.
func normalizeBranch(branch string) string {
	branch = strings.TrimSpace(branch)
	switch branch {
	case "HEAD":
		return BranchDetached
	case "":
		return BranchUnknown
	}
	return branch
}

// normalizeCommitHash lowercases a hash and rejects values that do not look
// like one. The empty string is valid and means "no commits yet".
func normalizeCommitHash(hash string) (string, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return "", nil
	}
	if len(hash) < 7 {
		return "", &InvalidStateError{Field: "commit_hash", Reason: "too short"}
	}
	for _, c := range hash {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return "", &InvalidStateError{Field: "commit_hash", Reason: fmt.Sprintf("non-hex character %q", c)}
		}
	}
	return strings.ToLower(hash), nil
}

// normalizeUntracked trims paths and drops blank entries, preserving the
// order the tool reported them in.
func normalizeUntracked(files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// IsClean reports whether the working tree has neither uncommitted
// modifications nor untracked files.
func (g GitState) IsClean() bool {
	return !g.IsDirty && len(g.UntrackedFiles) == 0
}

// HasChanges reports whether the repository has any changes at all.
// Kept as its own predicate rather than !IsClean so dirty-vs-untracked can
// be weighted differently in a later revision.
func (g GitState) HasChanges() bool {
	return g.IsDirty || len(g.UntrackedFiles) > 0
}

// ShortHash returns an abbreviated commit hash for display.
func (g GitState) ShortHash() string {
	if len(g.CommitHash) > 7 {
		return g.CommitHash[:7]
	}
	return g.CommitHash
}

// StatusSummary returns a one-line human description of the working tree.
func (g GitState) StatusSummary() string {
	if !g.IsGitRepo {
		return "not a git repository"
	}
	if g.IsClean() {
		return fmt.Sprintf("clean on %s", g.Branch)
	}
	var parts []string
	if g.IsDirty {
		parts = append(parts, "uncommitted changes")
	}
	if n := len(g.UntrackedFiles); n > 0 {
		parts = append(parts, fmt.Sprintf("%d untracked", n))
	}
	return fmt.Sprintf("%s on %s", strings.Join(parts, ", "), g.Branch)
}

// HasRemote reports whether an origin remote is configured.
func (g GitState) HasRemote() bool {
	return g.RemoteURL != nil
}

// BranchInfo describes the current branch in more detail.
type BranchInfo struct {
	Current      string
	IsDetached   bool
	IsMainBranch bool
	CommitCount  int
}

// GetBranchInfo returns detailed branch information.
func (g GitState) GetBranchInfo() BranchInfo {
	return BranchInfo{
		Current:      g.Branch,
		IsDetached:   g.Branch == BranchDetached,
		IsMainBranch: g.Branch == "main" || g.Branch == "master" || g.Branch == "develop",
		CommitCount:  g.CommitCount,
	}
}

// RemoteInfo describes the configured origin remote.
type RemoteInfo struct {
	HasRemote bool
	URL       string
	IsGitHub  bool
	IsGitLab  bool
}

// GetRemoteInfo returns remote repository information.
func (g GitState) GetRemoteInfo() RemoteInfo {
	info := RemoteInfo{HasRemote: g.RemoteURL != nil}
	if g.RemoteURL != nil {
		info.URL = *g.RemoteURL
		info.IsGitHub = strings.Contains(info.URL, "github.com")
		info.IsGitLab = strings.Contains(info.URL, "gitlab")
	}
	return info
}

// WorktreeStatus describes the working tree in commit-oriented terms.
type WorktreeStatus struct {
	IsDirty        bool
	UntrackedFiles []string
	UntrackedCount int
	NeedsCommit    bool
}

// GetWorktreeStatus returns working tree status information.
func (g GitState) GetWorktreeStatus() WorktreeStatus {
	return WorktreeStatus{
		IsDirty:        g.IsDirty,
		UntrackedFiles: g.UntrackedFiles,
		UntrackedCount: len(g.UntrackedFiles),
		NeedsCommit:    g.HasChanges(),
	}
}
