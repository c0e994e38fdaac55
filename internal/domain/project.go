package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Project is the canonical record for one project in the Dugger ecosystem.
// The inspector subsystem populates Git; everything else belongs to the
// registry.
type Project struct {
	ID           string
	Name         string
	Path         string
	Capabilities []string
	HealthScore  int
	Git          *GitState
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewProject creates a project rooted at an absolute path with the maximum
// health score. The path is cleaned; capabilities start empty.
func NewProject(name, path string) (*Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyProjectName
	}
	if !filepath.IsAbs(path) {
		return nil, ErrRelativePath
	}

	now := time.Now()
	return &Project{
		ID:           generateID(),
		Name:         strings.TrimSpace(name),
		Path:         filepath.Clean(path),
		Capabilities: []string{},
		HealthScore:  MaxHealthScore,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// HasCapability checks if the project has a specific capability.
func (p *Project) HasCapability(capability string) bool {
	capability = strings.ToLower(capability)
	for _, c := range p.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// AddCapability adds a capability, normalized to lowercase, if not present.
func (p *Project) AddCapability(capability string) {
	capability = strings.ToLower(capability)
	if p.HasCapability(capability) {
		return
	}
	p.Capabilities = append(p.Capabilities, capability)
	p.UpdatedAt = time.Now()
}

// RemoveCapability removes a capability from the project.
func (p *Project) RemoveCapability(capability string) {
	capability = strings.ToLower(capability)
	for i, c := range p.Capabilities {
		if c == capability {
			p.Capabilities = append(p.Capabilities[:i], p.Capabilities[i+1:]...)
			p.UpdatedAt = time.Now()
			return
		}
	}
}

// SetGitState replaces the git snapshot wholesale. Field-by-field mutation
// of an attached snapshot is never performed.
func (p *Project) SetGitState(state GitState) {
	p.Git = &state
	p.UpdatedAt = time.Now()
}

// SetHealthScore records a new health score, clamped to the valid range.
func (p *Project) SetHealthScore(score int) {
	p.HealthScore = clampScore(score)
	p.UpdatedAt = time.Now()
}

// IsHealthy checks if the project health meets the threshold.
func (p *Project) IsHealthy(threshold int) bool {
	return p.HealthScore >= threshold
}
