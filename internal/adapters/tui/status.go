package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/duggerlink/dugger/internal/config"
	"github.com/duggerlink/dugger/internal/domain"
)

// RenderGitState formats a repository snapshot for plain terminal output.
func RenderGitState(path string, state *domain.GitState, theme *config.ThemeConfig) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.ColorTitle))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorDim))
	healthyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorHealthy))
	unhealthyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorUnhealthy))

	var b strings.Builder
	b.WriteString(titleStyle.Render(path) + "\n")

	if !state.IsGitRepo {
		b.WriteString(dimStyle.Render("not a git repository") + "\n")
		return b.String()
	}

	if state.IsClean() {
		b.WriteString(healthyStyle.Render(theme.IconClean+" clean") + "\n")
	} else {
		b.WriteString(unhealthyStyle.Render(theme.IconDirty+" "+describeChanges(state)) + "\n")
	}

	b.WriteString(fmt.Sprintf("%s %s\n", theme.IconBranch, state.Branch))
	b.WriteString(fmt.Sprintf("commit %s (%d total)\n", orNone(state.ShortHash()), state.CommitCount))
	remote := "no remote"
	if state.RemoteURL != nil {
		remote = *state.RemoteURL
	}
	b.WriteString("remote " + remote + "\n")

	for _, file := range state.UntrackedFiles {
		b.WriteString(dimStyle.Render("  ? "+file) + "\n")
	}
	return b.String()
}

// RenderHealth formats a project health line for plain terminal output.
func RenderHealth(project *domain.Project, threshold int, theme *config.ThemeConfig) string {
	healthyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorHealthy))
	unhealthyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.ColorUnhealthy))

	label := fmt.Sprintf("%s: %d/100", project.Name, project.HealthScore)
	if project.IsHealthy(threshold) {
		return healthyStyle.Render(label + " healthy")
	}
	return unhealthyStyle.Render(fmt.Sprintf("%s unhealthy (threshold %d)", label, threshold))
}

func describeChanges(state *domain.GitState) string {
	parts := []string{}
	if state.IsDirty {
		parts = append(parts, "uncommitted changes")
	}
	if n := len(state.UntrackedFiles); n > 0 {
		parts = append(parts, fmt.Sprintf("%d untracked", n))
	}
	if len(parts) == 0 {
		return "changes present"
	}
	return strings.Join(parts, ", ")
}
