// Package services implements the application layer (use cases)
// following hexagonal architecture principles.
package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/duggerlink/dugger/internal/domain"
	"github.com/duggerlink/dugger/internal/ports"
)

// refreshConcurrency bounds how many repositories are inspected at once
// during a fleet-wide refresh. Keys never collide across repositories, so
// the bound exists only to limit simultaneous subprocesses.
const refreshConcurrency = 4

// HealthNotifier is told when a refresh drops a project below the healthy
// threshold.
type HealthNotifier interface {
	NotifyHealthDrop(project string, score, threshold int) error
}

// ProjectService handles project registry and inspection use cases.
type ProjectService struct {
	storage   ports.Storage
	inspector ports.GitInspector

	baseScore        int
	healthyThreshold int
	notifier         HealthNotifier
}

// NewProjectService creates a new project service.
func NewProjectService(storage ports.Storage, inspector ports.GitInspector) *ProjectService {
	return &ProjectService{
		storage:          storage,
		inspector:        inspector,
		baseScore:        domain.MaxHealthScore,
		healthyThreshold: domain.DefaultHealthyThreshold,
	}
}

// Ensure ProjectService implements ports.ProjectStateProvider.
var _ ports.ProjectStateProvider = (*ProjectService)(nil)

// SetBaseScore sets the baseline health score refreshes start from.
func (s *ProjectService) SetBaseScore(score int) {
	s.baseScore = score
}

// SetHealthyThreshold sets the score below which alerts fire.
func (s *ProjectService) SetHealthyThreshold(threshold int) {
	s.healthyThreshold = threshold
}

// SetNotifier wires an optional health alert sink.
func (s *ProjectService) SetNotifier(notifier HealthNotifier) {
	s.notifier = notifier
}

// RegisterProjectRequest contains the data needed to register a project.
type RegisterProjectRequest struct {
	Name         string
	Path         string
	Capabilities []string
}

// Register adds a project to the registry and performs an initial
// inspection of its repository state.
func (s *ProjectService) Register(ctx context.Context, req RegisterProjectRequest) (*domain.Project, error) {
	path, err := filepath.Abs(req.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	name := req.Name
	if name == "" {
		name = filepath.Base(path)
	}

	project, err := domain.NewProject(name, path)
	if err != nil {
		return nil, fmt.Errorf("invalid project: %w", err)
	}
	for _, c := range req.Capabilities {
		project.AddCapability(c)
	}

	state, err := s.inspector.Summary(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", path, err)
	}
	if state.IsGitRepo {
		project.AddCapability("git")
	}
	project.SetGitState(state)
	project.SetHealthScore(domain.AdjustHealthScore(s.baseScore, &state))

	if err := s.storage.Projects().Save(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// ListProjects implements ports.ProjectStateProvider.
func (s *ProjectService) ListProjects(ctx context.Context) ([]*domain.Project, error) {
	return s.storage.Projects().FindAll(ctx)
}

// GetProject implements ports.ProjectStateProvider.
func (s *ProjectService) GetProject(ctx context.Context, name string) (*domain.Project, error) {
	return s.storage.Projects().FindByName(ctx, name)
}

// SearchProjects returns projects whose names fuzzy-match the query.
func (s *ProjectService) SearchProjects(ctx context.Context, query string) ([]*domain.Project, error) {
	return s.storage.Projects().Search(ctx, query)
}

// RemoveProject deletes a project from the registry by name.
func (s *ProjectService) RemoveProject(ctx context.Context, name string) error {
	project, err := s.storage.Projects().FindByName(ctx, name)
	if err != nil {
		return err
	}
	return s.storage.Projects().Delete(ctx, project.ID)
}

// Refresh implements ports.ProjectStateProvider. It replaces the project's
// git snapshot wholesale and recomputes the health score from the baseline.
func (s *ProjectService) Refresh(ctx context.Context, name string) (*domain.Project, error) {
	project, err := s.storage.Projects().FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	state, err := s.inspector.Summary(ctx, project.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", project.Path, err)
	}

	wasHealthy := project.IsHealthy(s.healthyThreshold)
	project.SetGitState(state)
	project.SetHealthScore(domain.AdjustHealthScore(s.baseScore, &state))

	if err := s.storage.Projects().Update(ctx, project); err != nil {
		return nil, err
	}

	if s.notifier != nil && wasHealthy && !project.IsHealthy(s.healthyThreshold) {
		if err := s.notifier.NotifyHealthDrop(project.Name, project.HealthScore, s.healthyThreshold); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: notification failed: %v\n", err)
		}
	}

	return project, nil
}

// RefreshAll re-inspects every registered project concurrently. A failure
// on one project does not stop the others; the first error is reported
// after all refreshes complete.
func (s *ProjectService) RefreshAll(ctx context.Context) ([]*domain.Project, error) {
	projects, err := s.storage.Projects().FindAll(ctx)
	if err != nil {
		return nil, err
	}

	refreshed := make([]*domain.Project, len(projects))
	var mu sync.Mutex
	var firstErr error

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)
	for i, project := range projects {
		g.Go(func() error {
			updated, err := s.Refresh(ctx, project.Name)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("failed to refresh %s: %w", project.Name, err)
				}
				refreshed[i] = project
				return nil
			}
			refreshed[i] = updated
			return nil
		})
	}
	_ = g.Wait()

	return refreshed, firstErr
}

// InspectPath implements ports.ProjectStateProvider.
func (s *ProjectService) InspectPath(ctx context.Context, path string) (domain.GitState, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return domain.GitState{}, fmt.Errorf("failed to resolve path: %w", err)
	}
	return s.inspector.Summary(ctx, abs)
}

// CheckClean reports whether a working tree is safe for a mutating
// operation. Write-side tools must consult this before acting and abort
// when it returns false.
func (s *ProjectService) CheckClean(ctx context.Context, path string) (bool, domain.GitState, error) {
	state, err := s.InspectPath(ctx, path)
	if err != nil {
		return false, domain.GitState{}, err
	}
	return state.IsClean(), state, nil
}

// Scan walks root looking for git repositories and registers each one that
// is not already known. Nested repositories are not descended into.
func (s *ProjectService) Scan(ctx context.Context, root string) ([]*domain.Project, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	var repoPaths []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor") {
			return filepath.SkipDir
		}
		if isRepoRoot(path) {
			repoPaths = append(repoPaths, path)
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	sort.Strings(repoPaths)

	var registered []*domain.Project
	for _, path := range repoPaths {
		project, err := s.Register(ctx, RegisterProjectRequest{Path: path})
		if err == domain.ErrProjectExists {
			continue
		}
		if err != nil {
			return registered, err
		}
		registered = append(registered, project)
	}

	return registered, nil
}

// isRepoRoot checks for a .git directory, or the .git file a linked
// worktree carries instead.
func isRepoRoot(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	if err != nil {
		return false
	}
	if info.IsDir() {
		return true
	}
	content, err := os.ReadFile(filepath.Join(path, ".git"))
	return err == nil && strings.HasPrefix(string(content), "gitdir: ")
}
