// Package git provides read-only repository inspection by shelling out to
// the git command-line tool. Write operations are deliberately absent; they
// belong to a separate write-capable component.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/duggerlink/dugger/internal/domain"
	"github.com/duggerlink/dugger/internal/ports"
)

// DefaultTimeout bounds a single git invocation.
const DefaultTimeout = 5 * time.Second

// Runner executes git commands against a working directory using os/exec.
// One process per call, no retries at this layer.
type Runner struct {
	gitPath string
	timeout time.Duration
}

// NewRunner creates a runner with the given per-invocation timeout.
// A non-positive timeout falls back to DefaultTimeout.
func NewRunner(timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{gitPath: "git", timeout: timeout}
}

// Ensure Runner implements ports.CommandRunner.
var _ ports.CommandRunner = (*Runner)(nil)

// Run executes `git <args>` in workingDir and returns captured stdout.
func (r *Runner) Run(ctx context.Context, workingDir string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.gitPath, args...)
	cmd.Dir = workingDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%w after %s: %s %s", domain.ErrToolTimeout, r.timeout, r.gitPath, strings.Join(args, " "))
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return "", &domain.ToolExecutionError{
			Tool:     r.gitPath,
			Args:     args,
			ExitCode: exitErr.ExitCode(),
			Stderr:   strings.TrimSpace(stderr.String()),
		}
	}

	if errors.Is(err, exec.ErrNotFound) {
		return "", fmt.Errorf("%w: %q is not installed or not on PATH", domain.ErrToolNotFound, r.gitPath)
	}

	return "", fmt.Errorf("failed to run %s: %w", r.gitPath, err)
}
