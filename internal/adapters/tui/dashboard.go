// Package tui provides the terminal dashboard for project health.
package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/sahilm/fuzzy"

	"github.com/duggerlink/dugger/internal/config"
	"github.com/duggerlink/dugger/internal/domain"
)

// Dashboard is the interactive project health view.
type Dashboard struct {
	theme     config.ThemeConfig
	threshold int

	// fetch returns the current registry contents; refresh re-inspects
	// every repository first. Both are wired by the command layer.
	fetch   func() ([]*domain.Project, error)
	refresh func() ([]*domain.Project, error)
}

// NewDashboard creates a dashboard with the given theme.
func NewDashboard(theme *config.ThemeConfig, healthyThreshold int) *Dashboard {
	return &Dashboard{theme: *theme, threshold: healthyThreshold}
}

// SetFetchProjects wires the registry read callback.
func (d *Dashboard) SetFetchProjects(fetch func() ([]*domain.Project, error)) {
	d.fetch = fetch
}

// SetRefreshAll wires the fleet refresh callback.
func (d *Dashboard) SetRefreshAll(refresh func() ([]*domain.Project, error)) {
	d.refresh = refresh
}

// Run starts the dashboard and blocks until the user quits.
func (d *Dashboard) Run() error {
	projects, err := d.fetch()
	if err != nil {
		return fmt.Errorf("failed to load projects: %w", err)
	}

	width := 100
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		width = w
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(d.theme.ColorAccent))

	model := dashboardModel{
		theme:     d.theme,
		threshold: d.threshold,
		projects:  projects,
		refresh:   d.refresh,
		spinner:   sp,
		filter:    newFilterInput(),
		width:     width,
	}

	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}

// newFilterInput builds the text input backing the "/" filter. The model
// must come from textinput.New so its cursor internals are initialized.
func newFilterInput() textinput.Model {
	filter := textinput.New()
	filter.Placeholder = "filter projects"
	filter.Prompt = "/ "
	return filter
}

type projectsMsg []*domain.Project

type refreshErrMsg struct{ err error }

type dashboardModel struct {
	theme     config.ThemeConfig
	threshold int

	projects   []*domain.Project
	cursor     int
	showDetail bool

	filtering bool
	filter    textinput.Model

	refreshing bool
	refresh    func() ([]*domain.Project, error)
	spinner    spinner.Model

	width int
	err   error
}

func (m dashboardModel) Init() tea.Cmd { return nil }

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case projectsMsg:
		m.projects = msg
		m.refreshing = false
		m.err = nil
		if m.cursor >= len(m.visible()) {
			m.cursor = 0
		}
		return m, nil

	case refreshErrMsg:
		m.refreshing = false
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if !m.refreshing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m dashboardModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case "enter":
		m.showDetail = !m.showDetail
	case "esc":
		if m.showDetail {
			m.showDetail = false
		} else if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.cursor = 0
		}
	case "/":
		m.filtering = true
		m.filter.Focus()
		return m, textinput.Blink
	case "r":
		if m.refreshing || m.refresh == nil {
			return m, nil
		}
		m.refreshing = true
		m.err = nil
		return m, tea.Batch(m.spinner.Tick, m.refreshCmd())
	}
	return m, nil
}

func (m dashboardModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.filtering = false
		m.filter.Blur()
		if msg.String() == "esc" {
			m.filter.SetValue("")
		}
		m.cursor = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.cursor = 0
	return m, cmd
}

func (m dashboardModel) refreshCmd() tea.Cmd {
	refresh := m.refresh
	return func() tea.Msg {
		projects, err := refresh()
		if err != nil {
			return refreshErrMsg{err: err}
		}
		return projectsMsg(projects)
	}
}

// visible applies the fuzzy filter to the project list.
func (m dashboardModel) visible() []*domain.Project {
	query := m.filter.Value()
	if query == "" {
		return m.projects
	}

	names := make([]string, len(m.projects))
	for i, p := range m.projects {
		names[i] = p.Name
	}

	matches := fuzzy.Find(query, names)
	filtered := make([]*domain.Project, 0, len(matches))
	for _, match := range matches {
		filtered = append(filtered, m.projects[match.Index])
	}
	return filtered
}

func (m dashboardModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorTitle))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorDim))
	accentStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorAccent))
	unhealthyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorUnhealthy))

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("  Dugger · project health") + "\n\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString("  " + m.filter.View() + "\n\n")
	}

	visible := m.visible()
	if len(visible) == 0 {
		b.WriteString(dimStyle.Render("  No projects. Register one with \"dugger projects add\".") + "\n")
	}

	nameWidth := 20
	for _, p := range visible {
		if len(p.Name) > nameWidth {
			nameWidth = len(p.Name)
		}
	}

	for i, p := range visible {
		line := m.projectLine(p, nameWidth)
		if i == m.cursor {
			b.WriteString("  " + accentStyle.Render("▸") + " " + line + "\n")
		} else {
			b.WriteString("    " + line + "\n")
		}
	}

	if m.showDetail && m.cursor < len(visible) {
		b.WriteString(m.detailView(visible[m.cursor]))
	}

	b.WriteString("\n")
	if m.refreshing {
		b.WriteString("  " + m.spinner.View() + dimStyle.Render(" refreshing...") + "\n")
	}
	if m.err != nil {
		b.WriteString("  " + unhealthyStyle.Render("refresh error: "+m.err.Error()) + "\n")
	}
	b.WriteString(dimStyle.Render("  ↑/↓ navigate · enter details · r refresh · / filter · q quit") + "\n")

	if m.width > 0 {
		return lipgloss.NewStyle().MaxWidth(m.width).Render(b.String())
	}
	return b.String()
}

func (m dashboardModel) projectLine(p *domain.Project, nameWidth int) string {
	healthyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHealthy))
	unhealthyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorUnhealthy))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorDim))

	score := fmt.Sprintf("%3d", p.HealthScore)
	if p.IsHealthy(m.threshold) {
		score = healthyStyle.Render(score)
	} else {
		score = unhealthyStyle.Render(score)
	}

	branch := dimStyle.Render("not a repo")
	state := " "
	if p.Git != nil && p.Git.IsGitRepo {
		branch = fmt.Sprintf("%s %s", m.theme.IconBranch, p.Git.Branch)
		if p.Git.IsClean() {
			state = healthyStyle.Render(m.theme.IconClean)
		} else {
			state = unhealthyStyle.Render(m.theme.IconDirty)
		}
	}

	return fmt.Sprintf("%-*s  %s  %s %s", nameWidth, p.Name, score, state, branch)
}

func (m dashboardModel) detailView(p *domain.Project) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorDim))

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  "+p.Path) + "\n")
	if p.Git == nil || !p.Git.IsGitRepo {
		b.WriteString(dimStyle.Render("  no version control metadata") + "\n")
		return b.String()
	}

	git := p.Git
	b.WriteString(fmt.Sprintf("  commit %s (%d total)\n", orNone(git.ShortHash()), git.CommitCount))
	remote := "no remote"
	if git.RemoteURL != nil {
		remote = *git.RemoteURL
	}
	b.WriteString("  remote " + remote + "\n")
	if len(git.UntrackedFiles) > 0 {
		b.WriteString(fmt.Sprintf("  %d untracked file(s)\n", len(git.UntrackedFiles)))
	}
	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
