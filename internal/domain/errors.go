package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors.
var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrProjectExists    = errors.New("project already exists")
	ErrEmptyProjectName = errors.New("project name cannot be empty")
	ErrRelativePath     = errors.New("project path must be absolute")
	ErrToolNotFound     = errors.New("git executable not found")
	ErrToolTimeout      = errors.New("git command timed out")
)

// InvalidStateError reports a GitState field that violated its documented
// constraint at construction time.
type InvalidStateError struct {
	Field  string
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid git state: %s: %s", e.Field, e.Reason)
}

// ToolExecutionError reports a git invocation that ran but exited non-zero.
// Stderr is captured so callers can interpret or surface the failure.
type ToolExecutionError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ToolExecutionError) Error() string {
	msg := fmt.Sprintf("%s %s: exit status %d", e.Tool, strings.Join(e.Args, " "), e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}
