package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/duggerlink/dugger/internal/adapters/tui"
	"github.com/duggerlink/dugger/internal/domain"
)

// refreshCmd represents the refresh command
var refreshCmd = &cobra.Command{
	Use:   "refresh [project]",
	Short: "Re-inspect projects and recompute health",
	Long: `Re-inspect the repository state of a project and recompute its
health score. With no argument every registered project is refreshed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		threshold := appConfig.Health.HealthyThreshold

		var projects []*domain.Project
		if len(args) == 1 {
			project, err := projectService.Refresh(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to refresh project: %w", err)
			}
			projects = []*domain.Project{project}
		} else {
			var err error
			projects, err = projectService.RefreshAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to refresh projects: %w", err)
			}
		}

		for _, p := range projects {
			fmt.Println(tui.RenderHealth(p, threshold, &appConfig.Theme))
		}
		return nil
	},
}
