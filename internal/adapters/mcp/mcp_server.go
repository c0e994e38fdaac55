// Package mcp provides the MCP (Model Context Protocol) server implementation.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/duggerlink/dugger/internal/domain"
	"github.com/duggerlink/dugger/internal/ports"
)

// Server implements the MCP server using mark3labs/mcp-go.
type Server struct {
	server   *server.MCPServer
	provider ports.ProjectStateProvider
	running  bool
}

// Ensure Server implements ports.MCPHandler.
var _ ports.MCPHandler = (*Server)(nil)

// NewServer creates a new MCP server instance.
func NewServer(provider ports.ProjectStateProvider) *Server {
	s := &Server{
		provider: provider,
	}

	// Create the MCP server
	s.server = server.NewMCPServer(
		"dugger-inspector",
		"1.0.0",
		server.WithLogging(),
	)

	// Register tools
	s.registerTools()

	return s
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	// Tool: get_git_summary
	summaryTool := mcp.NewTool(
		"get_git_summary",
		mcp.WithDescription("Get the git repository state (branch, dirty flag, commit hash, untracked files, remote) for a path"),
		mcp.WithString(
			"path",
			mcp.Required(),
			mcp.Description("Path to the repository working directory"),
		),
	)
	s.server.AddTool(summaryTool, s.handleGetGitSummary)

	// Tool: check_clean
	checkCleanTool := mcp.NewTool(
		"check_clean",
		mcp.WithDescription("Check whether a working tree is clean. Mutating git operations must call this first and abort when dirty"),
		mcp.WithString(
			"path",
			mcp.Required(),
			mcp.Description("Path to the repository working directory"),
		),
	)
	s.server.AddTool(checkCleanTool, s.handleCheckClean)

	// Tool: list_projects
	s.server.AddTool(
		mcp.NewTool(
			"list_projects",
			mcp.WithDescription("List all registered projects with their health scores and git state"),
		),
		s.handleListProjects,
	)

	// Tool: get_project_health
	healthTool := mcp.NewTool(
		"get_project_health",
		mcp.WithDescription("Get the health score and git state of a registered project"),
		mcp.WithString(
			"name",
			mcp.Required(),
			mcp.Description("The registered project name"),
		),
	)
	s.server.AddTool(healthTool, s.handleGetProjectHealth)

	// Tool: refresh_project
	refreshTool := mcp.NewTool(
		"refresh_project",
		mcp.WithDescription("Re-inspect a project's repository and recompute its health score"),
		mcp.WithString(
			"name",
			mcp.Required(),
			mcp.Description("The registered project name"),
		),
	)
	s.server.AddTool(refreshTool, s.handleRefreshProject)
}

// Start begins serving MCP requests over stdio. Blocks until the client
// disconnects or the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.running = true
	defer func() { s.running = false }()
	return server.ServeStdio(s.server)
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	s.running = false
	return nil
}

// IsRunning returns true if the server is active.
func (s *Server) IsRunning() bool {
	return s.running
}

// handleGetGitSummary handles the get_git_summary tool.
func (s *Server) handleGetGitSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return nil, err
	}

	state, err := s.provider.InspectPath(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", path, err)
	}

	jsonData, err := json.MarshalIndent(gitStateMap(&state), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal git state: %w", err)
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleCheckClean handles the check_clean tool.
func (s *Server) handleCheckClean(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return nil, err
	}

	state, err := s.provider.InspectPath(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", path, err)
	}

	result := map[string]interface{}{
		"path":     path,
		"is_clean": state.IsClean(),
	}
	if !state.IsClean() {
		result["warning"] = "working tree has uncommitted or untracked changes; abort mutating operations"
		result["is_dirty"] = state.IsDirty
		result["untracked_count"] = len(state.UntrackedFiles)
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleListProjects handles the list_projects tool.
func (s *Server) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.provider.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projectList := make([]map[string]interface{}, 0, len(projects))
	for _, p := range projects {
		projectList = append(projectList, projectMap(p))
	}

	result := map[string]interface{}{
		"projects": projectList,
		"count":    len(projectList),
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal projects: %w", err)
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleGetProjectHealth handles the get_project_health tool.
func (s *Server) handleGetProjectHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return nil, err
	}

	project, err := s.provider.GetProject(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get project %q: %w", name, err)
	}

	jsonData, err := json.MarshalIndent(projectMap(project), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal project: %w", err)
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleRefreshProject handles the refresh_project tool.
func (s *Server) handleRefreshProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return nil, err
	}

	project, err := s.provider.Refresh(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh project %q: %w", name, err)
	}

	jsonData, err := json.MarshalIndent(projectMap(project), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal project: %w", err)
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// gitStateMap renders a snapshot for JSON output.
func gitStateMap(state *domain.GitState) map[string]interface{} {
	result := map[string]interface{}{
		"is_git_repo":     state.IsGitRepo,
		"branch":          state.Branch,
		"is_dirty":        state.IsDirty,
		"commit_hash":     state.CommitHash,
		"untracked_files": state.UntrackedFiles,
		"commit_count":    state.CommitCount,
		"remote_url":      nil,
		"is_clean":        state.IsClean(),
		"has_changes":     state.HasChanges(),
		"untracked_count": state.GetWorktreeStatus().UntrackedCount,
		"status_summary":  state.StatusSummary(),
	}
	if state.RemoteURL != nil {
		result["remote_url"] = *state.RemoteURL
	}
	return result
}

// projectMap renders a project for JSON output.
func projectMap(project *domain.Project) map[string]interface{} {
	result := map[string]interface{}{
		"id":           project.ID,
		"name":         project.Name,
		"path":         project.Path,
		"capabilities": project.Capabilities,
		"health_score": project.HealthScore,
		"git":          nil,
	}
	if project.Git != nil {
		result["git"] = gitStateMap(project.Git)
	}
	return result
}
