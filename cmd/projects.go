package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/duggerlink/dugger/internal/domain"
	"github.com/duggerlink/dugger/internal/services"
)

var (
	addName         string
	addCapabilities []string
	listQuery       string
)

// projectsCmd groups the registry subcommands
var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage the project registry",
	Long:  `List, register, remove and discover projects tracked by Dugger.`,
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		var projects []*domain.Project
		var err error
		if listQuery != "" {
			projects, err = projectService.SearchProjects(ctx, listQuery)
		} else {
			projects, err = projectService.ListProjects(ctx)
		}
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}

		if jsonOutput {
			var entries []map[string]interface{}
			for _, p := range projects {
				entries = append(entries, map[string]interface{}{
					"id":           p.ID,
					"name":         p.Name,
					"path":         p.Path,
					"capabilities": p.Capabilities,
					"health_score": p.HealthScore,
				})
			}
			data := map[string]interface{}{
				"projects": entries,
				"count":    len(entries),
			}
			jsonData, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal projects: %w", err)
			}
			fmt.Println(string(jsonData))
			return nil
		}

		if len(projects) == 0 {
			fmt.Println("No projects registered.")
			return nil
		}
		for _, p := range projects {
			branch := "-"
			if p.Git != nil && p.Git.IsGitRepo {
				branch = p.Git.Branch
			}
			fmt.Printf("%-24s %3d  %-16s %s\n", p.Name, p.HealthScore, branch, p.Path)
		}
		return nil
	},
}

var projectsAddCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Register a project",
	Long: `Register the project at the given path. The directory name is used
as the project name unless --name is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		project, err := projectService.Register(ctx, services.RegisterProjectRequest{
			Name:         addName,
			Path:         args[0],
			Capabilities: addCapabilities,
		})
		if err != nil {
			return fmt.Errorf("failed to register project: %w", err)
		}

		fmt.Printf("Registered %q (health %d, capabilities: %s)\n",
			project.Name, project.HealthScore, strings.Join(project.Capabilities, ", "))
		return nil
	},
}

var projectsRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a project from the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if err := projectService.RemoveProject(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to remove project: %w", err)
		}
		fmt.Printf("Removed %q\n", args[0])
		return nil
	},
}

var projectsScanCmd = &cobra.Command{
	Use:   "scan [root]",
	Short: "Discover and register repositories under a directory",
	Long: `Walk the given directory (default: the current directory) looking
for git repositories and register each one that is not already tracked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		root, err := resolvePathArg(args)
		if err != nil {
			return err
		}

		projects, err := projectService.Scan(ctx, root)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", root, err)
		}

		if len(projects) == 0 {
			fmt.Println("No new repositories found.")
			return nil
		}
		for _, p := range projects {
			fmt.Printf("Registered %q at %s\n", p.Name, p.Path)
		}
		fmt.Printf("%d project(s) registered\n", len(projects))
		return nil
	},
}

func init() {
	projectsAddCmd.Flags().StringVarP(&addName, "name", "n", "", "Project name (default: directory name)")
	projectsAddCmd.Flags().StringSliceVarP(&addCapabilities, "capability", "c", nil, "Capability tags for the project")
	projectsListCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Fuzzy filter by project name")

	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsAddCmd)
	projectsCmd.AddCommand(projectsRemoveCmd)
	projectsCmd.AddCommand(projectsScanCmd)
}
