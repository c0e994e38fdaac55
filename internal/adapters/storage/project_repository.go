package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/duggerlink/dugger/internal/domain"
	"github.com/duggerlink/dugger/internal/ports"
	"github.com/sahilm/fuzzy"
)

const projectColumns = `id, name, path, capabilities, health_score,
	git_is_repo, git_branch, git_dirty, git_commit_hash, git_untracked,
	git_commit_count, git_remote_url, created_at, updated_at`

// projectRepository implements ports.ProjectRepository using SQLite.
type projectRepository struct {
	db *sql.DB
}

// newProjectRepository creates a new project repository.
func newProjectRepository(db *sql.DB) ports.ProjectRepository {
	return &projectRepository{db: db}
}

// Save persists a new project to storage.
func (r *projectRepository) Save(ctx context.Context, project *domain.Project) error {
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	args := projectArgs(project)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrProjectExists
		}
		return fmt.Errorf("failed to save project: %w", err)
	}

	return nil
}

// FindByID retrieves a project by its unique identifier.
func (r *projectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// FindByName retrieves a project by its registered name.
func (r *projectRepository) FindByName(ctx context.Context, name string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE name = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, name))
}

// FindAll retrieves all registered projects ordered by name.
func (r *projectRepository) FindAll(ctx context.Context) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []*domain.Project
	for rows.Next() {
		project, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	return projects, rows.Err()
}

// Search returns projects whose names fuzzy-match the query.
func (r *projectRepository) Search(ctx context.Context, query string) ([]*domain.Project, error) {
	projects, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return projects, nil
	}

	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name
	}

	matches := fuzzy.Find(query, names)
	matched := make([]*domain.Project, 0, len(matches))
	for _, m := range matches {
		matched = append(matched, projects[m.Index])
	}

	return matched, nil
}

// Update modifies an existing project.
func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	query := `
		UPDATE projects
		SET name = ?, path = ?, capabilities = ?, health_score = ?,
			git_is_repo = ?, git_branch = ?, git_dirty = ?, git_commit_hash = ?,
			git_untracked = ?, git_commit_count = ?, git_remote_url = ?,
			created_at = ?, updated_at = ?
		WHERE id = ?
	`

	args := projectArgs(project)
	// Move the id from the leading insert position to the WHERE clause.
	args = append(args[1:], args[0])

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrProjectNotFound
	}

	return nil
}

// Delete removes a project from storage.
func (r *projectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrProjectNotFound
	}

	return nil
}

// projectArgs flattens a project into the column order of projectColumns.
func projectArgs(project *domain.Project) []interface{} {
	args := []interface{}{
		project.ID,
		project.Name,
		project.Path,
		strings.Join(project.Capabilities, ","),
		project.HealthScore,
	}

	if git := project.Git; git != nil {
		args = append(args,
			git.IsGitRepo,
			git.Branch,
			git.IsDirty,
			git.CommitHash,
			// Untracked paths may contain commas; newline is the one
			// character git itself cannot report inside a path line.
			strings.Join(git.UntrackedFiles, "\n"),
			git.CommitCount,
			git.RemoteURL,
		)
	} else {
		args = append(args, nil, nil, nil, nil, nil, nil, nil)
	}

	return append(args, project.CreatedAt, project.UpdatedAt)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *projectRepository) scanOne(row *sql.Row) (*domain.Project, error) {
	project, err := r.scanRow(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrProjectNotFound
	}
	return project, err
}

func (r *projectRepository) scanRow(row rowScanner) (*domain.Project, error) {
	var project domain.Project
	var capabilities string
	var gitIsRepo, gitDirty sql.NullBool
	var gitBranch, gitHash, gitUntracked, gitRemote sql.NullString
	var gitCount sql.NullInt64

	err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Path,
		&capabilities,
		&project.HealthScore,
		&gitIsRepo,
		&gitBranch,
		&gitDirty,
		&gitHash,
		&gitUntracked,
		&gitCount,
		&gitRemote,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}

	project.Capabilities = []string{}
	if capabilities != "" {
		project.Capabilities = strings.Split(capabilities, ",")
	}

	if gitIsRepo.Valid {
		params := domain.GitStateParams{
			IsGitRepo:   gitIsRepo.Bool,
			Branch:      gitBranch.String,
			IsDirty:     gitDirty.Bool,
			CommitHash:  gitHash.String,
			CommitCount: int(gitCount.Int64),
		}
		if !gitIsRepo.Bool {
			params = domain.GitStateParams{}
		}
		if gitUntracked.String != "" {
			params.UntrackedFiles = strings.Split(gitUntracked.String, "\n")
		}
		if gitRemote.Valid && gitRemote.String != "" {
			remote := gitRemote.String
			params.RemoteURL = &remote
		}

		state, err := domain.NewGitState(params)
		if err != nil {
			return nil, fmt.Errorf("failed to restore git state: %w", err)
		}
		project.Git = &state
	}

	return &project, nil
}
