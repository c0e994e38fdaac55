package ports

import (
	"context"

	"github.com/duggerlink/dugger/internal/domain"
)

// ProjectRepository defines the interface for project persistence.
// This is a driven port (implemented by adapters).
type ProjectRepository interface {
	// Save persists a new project to storage.
	Save(ctx context.Context, project *domain.Project) error

	// FindByID retrieves a project by its unique identifier.
	FindByID(ctx context.Context, id string) (*domain.Project, error)

	// FindByName retrieves a project by its registered name.
	FindByName(ctx context.Context, name string) (*domain.Project, error)

	// FindAll retrieves all registered projects ordered by name.
	FindAll(ctx context.Context) ([]*domain.Project, error)

	// Search returns projects whose names fuzzy-match the query.
	Search(ctx context.Context, query string) ([]*domain.Project, error)

	// Update modifies an existing project.
	Update(ctx context.Context, project *domain.Project) error

	// Delete removes a project from storage.
	Delete(ctx context.Context, id string) error
}

// Storage is the combined repository interface.
// This is a driven port (implemented by adapters).
type Storage interface {
	// Projects provides access to project operations.
	Projects() ProjectRepository

	// Close closes the storage connection.
	Close() error

	// Migrate runs database migrations.
	Migrate() error
}
