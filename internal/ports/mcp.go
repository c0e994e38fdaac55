package ports

import (
	"context"

	"github.com/duggerlink/dugger/internal/domain"
)

// MCPHandler defines the interface for MCP server operations.
// This is a driving port (called by the application layer).
type MCPHandler interface {
	// Start begins serving MCP requests.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the server.
	Stop() error

	// IsRunning returns true if the server is active.
	IsRunning() bool
}

// ProjectStateProvider provides project and repository state to the MCP
// server and the dashboard.
// This is a driven port (implemented by the services layer).
type ProjectStateProvider interface {
	// ListProjects returns all registered projects.
	ListProjects(ctx context.Context) ([]*domain.Project, error)

	// GetProject returns a single project by name.
	GetProject(ctx context.Context, name string) (*domain.Project, error)

	// Refresh re-inspects a project's repository and recomputes its health.
	Refresh(ctx context.Context, name string) (*domain.Project, error)

	// InspectPath returns a fresh (possibly cached) git summary for an
	// arbitrary path, registered or not.
	InspectPath(ctx context.Context, path string) (domain.GitState, error)
}
