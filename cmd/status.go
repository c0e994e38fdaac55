package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/duggerlink/dugger/internal/adapters/tui"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status [path]",
	Short: "Show the git state of a directory",
	Long: `Inspect the git repository containing the given directory (default:
the current directory) and print its branch, cleanliness, commit and
remote information. The repository is never modified.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		path, err := resolvePathArg(args)
		if err != nil {
			return err
		}

		state, err := projectService.InspectPath(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to inspect %s: %w", path, err)
		}

		var changed []string
		if state.IsGitRepo {
			changed, err = gitInspector.ChangedFiles(ctx, path)
			if err != nil {
				return fmt.Errorf("failed to list changed files in %s: %w", path, err)
			}
		}

		if jsonOutput {
			worktree := state.GetWorktreeStatus()
			data := map[string]interface{}{
				"path":            path,
				"is_git_repo":     state.IsGitRepo,
				"branch":          state.Branch,
				"is_dirty":        state.IsDirty,
				"is_clean":        state.IsClean(),
				"commit_hash":     state.CommitHash,
				"commit_count":    state.CommitCount,
				"untracked_files": state.UntrackedFiles,
				"untracked_count": worktree.UntrackedCount,
				"needs_commit":    worktree.NeedsCommit,
				"changed_files":   changed,
			}
			if state.RemoteURL != nil {
				data["remote_url"] = *state.RemoteURL
			}
			jsonData, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal state: %w", err)
			}
			fmt.Println(string(jsonData))
			return nil
		}

		fmt.Print(tui.RenderGitState(path, &state, &appConfig.Theme))
		for _, f := range changed {
			fmt.Printf("  modified: %s\n", f)
		}
		return nil
	},
}

// resolvePathArg returns the absolute form of the optional path argument,
// defaulting to the current working directory.
func resolvePathArg(args []string) (string, error) {
	if len(args) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to determine working directory: %w", err)
		}
		return wd, nil
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	return path, nil
}
