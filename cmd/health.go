package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/duggerlink/dugger/internal/adapters/tui"
	"github.com/duggerlink/dugger/internal/domain"
)

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health [project|path]",
	Short: "Show project health scores",
	Long: `Show the health score of a registered project, or of every
registered project when no argument is given. An argument that is not a
registered name is treated as a directory path and scored ad hoc. A
project is healthy when its score is at or above the configured threshold.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		threshold := appConfig.Health.HealthyThreshold

		var projects []*domain.Project
		if len(args) == 1 {
			project, err := projectService.GetProject(ctx, args[0])
			if errors.Is(err, domain.ErrProjectNotFound) {
				project, err = adHocHealth(ctx, args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to get project: %w", err)
			}
			projects = []*domain.Project{project}
		} else {
			var err error
			projects, err = projectService.ListProjects(ctx)
			if err != nil {
				return fmt.Errorf("failed to list projects: %w", err)
			}
		}

		if jsonOutput {
			var entries []map[string]interface{}
			for _, p := range projects {
				entries = append(entries, map[string]interface{}{
					"name":         p.Name,
					"health_score": p.HealthScore,
					"is_healthy":   p.IsHealthy(threshold),
					"threshold":    threshold,
				})
			}
			jsonData, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal health report: %w", err)
			}
			fmt.Println(string(jsonData))
			return nil
		}

		if len(projects) == 0 {
			fmt.Println("No projects registered. Add one with \"dugger projects add\".")
			return nil
		}
		for _, p := range projects {
			fmt.Println(tui.RenderHealth(p, threshold, &appConfig.Theme))
		}
		return nil
	},
}

// adHocHealth scores a directory that is not a registered project.
func adHocHealth(ctx context.Context, arg string) (*domain.Project, error) {
	path, err := resolvePathArg([]string{arg})
	if err != nil {
		return nil, err
	}
	state, err := projectService.InspectPath(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", path, err)
	}
	return scoredProject(filepath.Base(path), path, state, appConfig.Health.BaseScore)
}

// scoredProject builds a transient project around a git snapshot and
// scores it without touching the registry.
func scoredProject(name, path string, state domain.GitState, baseScore int) (*domain.Project, error) {
	project, err := domain.NewProject(name, path)
	if err != nil {
		return nil, err
	}
	project.SetGitState(state)
	project.SetHealthScore(domain.AdjustHealthScore(baseScore, &state))
	return project, nil
}
