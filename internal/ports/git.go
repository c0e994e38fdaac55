// Package ports defines the interfaces (driven and driving ports)
// for the Dugger application following hexagonal architecture principles.
// These interfaces define the contracts between the domain layer and
// external infrastructure.
package ports

import (
	"context"

	"github.com/duggerlink/dugger/internal/domain"
)

// CommandRunner executes the external version-control tool against a
// working directory. Exactly one process is spawned per call, bounded by a
// timeout; retry policy, if any, belongs to the caller.
// This is a driven port (implemented by adapters).
type CommandRunner interface {
	// Run executes the tool with the given arguments and returns captured
	// stdout. A non-zero exit surfaces as *domain.ToolExecutionError with
	// captured stderr; a missing executable as domain.ErrToolNotFound; an
	// exceeded timeout as domain.ErrToolTimeout.
	Run(ctx context.Context, workingDir string, args ...string) (string, error)
}

// GitInspector answers read-only queries about a repository's state.
// Each fact is cached independently; absence of a repository or of a
// configured remote is a value, not an error.
// This is a driven port (implemented by adapters).
type GitInspector interface {
	// IsRepository reports whether path is under version control. It fails
	// open to false and never returns an error.
	IsRepository(ctx context.Context, path string) bool

	// Summary assembles a full snapshot. Infrastructure failures (tool
	// missing, timeout) on the existence check propagate; sub-query
	// failures that mean expected absence degrade the single field.
	Summary(ctx context.Context, path string) (domain.GitState, error)

	// Branch returns the current branch name, "detached" for a detached
	// HEAD, or "unknown" when it cannot be determined.
	Branch(ctx context.Context, path string) (string, error)

	// IsDirty reports uncommitted modifications to tracked files.
	IsDirty(ctx context.Context, path string) (bool, error)

	// CommitHash returns the full hash of HEAD, empty if no commits exist.
	CommitHash(ctx context.Context, path string) (string, error)

	// UntrackedFiles lists untracked paths in the tool's reported order.
	UntrackedFiles(ctx context.Context, path string) ([]string, error)

	// CommitCount returns the number of commits reachable from HEAD.
	CommitCount(ctx context.Context, path string) (int, error)

	// RemoteURL returns the configured origin URL, empty if none.
	RemoteURL(ctx context.Context, path string) (string, error)
}
