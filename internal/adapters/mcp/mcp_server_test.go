package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/duggerlink/dugger/internal/domain"
)

// mockProvider is a mock implementation of ports.ProjectStateProvider for testing.
type mockProvider struct {
	projects  []*domain.Project
	states    map[string]domain.GitState
	refreshed []string
}

func (m *mockProvider) ListProjects(ctx context.Context) ([]*domain.Project, error) {
	return m.projects, nil
}

func (m *mockProvider) GetProject(ctx context.Context, name string) (*domain.Project, error) {
	for _, p := range m.projects {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, domain.ErrProjectNotFound
}

func (m *mockProvider) Refresh(ctx context.Context, name string) (*domain.Project, error) {
	m.refreshed = append(m.refreshed, name)
	return m.GetProject(ctx, name)
}

func (m *mockProvider) InspectPath(ctx context.Context, path string) (domain.GitState, error) {
	if state, ok := m.states[path]; ok {
		return state, nil
	}
	return domain.DefaultGitState(), nil
}

func requestWith(args map[string]interface{}) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args
	return request
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want mcp.TextContent", result.Content[0])
	}
	return text.Text
}

func TestNewServer(t *testing.T) {
	mock := &mockProvider{}
	server := NewServer(mock)

	if server == nil {
		t.Fatal("NewServer() returned nil")
	}
	if server.provider != mock {
		t.Error("NewServer() did not set provider correctly")
	}
	if server.server == nil {
		t.Error("NewServer() did not create MCP server")
	}
	if server.IsRunning() {
		t.Error("IsRunning() should return false before Start()")
	}
}

func TestServer_handleGetGitSummary(t *testing.T) {
	remote := "git@github.com:duggerlink/dugger.git"
	mock := &mockProvider{
		states: map[string]domain.GitState{
			"/repo": {
				IsGitRepo:      true,
				Branch:         "main",
				IsDirty:        true,
				CommitHash:     "abc1234",
				UntrackedFiles: []string{"notes.txt"},
				CommitCount:    9,
				RemoteURL:      &remote,
			},
		},
	}

	server := NewServer(mock)
	result, err := server.handleGetGitSummary(context.Background(), requestWith(map[string]interface{}{
		"path": "/repo",
	}))
	if err != nil {
		t.Fatalf("handleGetGitSummary() error = %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{`"branch": "main"`, `"is_dirty": true`, `"commit_count": 9`} {
		if !strings.Contains(text, want) {
			t.Errorf("handleGetGitSummary() output missing %q:\n%s", want, text)
		}
	}
}

func TestServer_handleGetGitSummary_MissingPath(t *testing.T) {
	server := NewServer(&mockProvider{})

	_, err := server.handleGetGitSummary(context.Background(), requestWith(nil))
	if err == nil {
		t.Error("handleGetGitSummary() error = nil, want error for missing path")
	}
}

func TestServer_handleCheckClean(t *testing.T) {
	mock := &mockProvider{
		states: map[string]domain.GitState{
			"/clean": {IsGitRepo: true, Branch: "main"},
			"/dirty": {IsGitRepo: true, Branch: "main", IsDirty: true},
		},
	}
	server := NewServer(mock)

	result, err := server.handleCheckClean(context.Background(), requestWith(map[string]interface{}{
		"path": "/clean",
	}))
	if err != nil {
		t.Fatalf("handleCheckClean() error = %v", err)
	}
	if text := resultText(t, result); !strings.Contains(text, `"is_clean": true`) {
		t.Errorf("handleCheckClean() output missing clean flag:\n%s", text)
	}

	result, err = server.handleCheckClean(context.Background(), requestWith(map[string]interface{}{
		"path": "/dirty",
	}))
	if err != nil {
		t.Fatalf("handleCheckClean() error = %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, `"is_clean": false`) {
		t.Errorf("handleCheckClean() output missing dirty flag:\n%s", text)
	}
	if !strings.Contains(text, "warning") {
		t.Errorf("handleCheckClean() output missing warning for dirty tree:\n%s", text)
	}
}

func TestServer_handleListProjects(t *testing.T) {
	p1, _ := domain.NewProject("alpha", "/home/dev/alpha")
	p2, _ := domain.NewProject("beta", "/home/dev/beta")
	server := NewServer(&mockProvider{projects: []*domain.Project{p1, p2}})

	result, err := server.handleListProjects(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("handleListProjects() error = %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, `"count": 2`) {
		t.Errorf("handleListProjects() output missing count:\n%s", text)
	}
	if !strings.Contains(text, "alpha") || !strings.Contains(text, "beta") {
		t.Errorf("handleListProjects() output missing project names:\n%s", text)
	}
}

func TestServer_handleGetProjectHealth(t *testing.T) {
	project, _ := domain.NewProject("alpha", "/home/dev/alpha")
	project.SetHealthScore(65)
	server := NewServer(&mockProvider{projects: []*domain.Project{project}})

	result, err := server.handleGetProjectHealth(context.Background(), requestWith(map[string]interface{}{
		"name": "alpha",
	}))
	if err != nil {
		t.Fatalf("handleGetProjectHealth() error = %v", err)
	}
	if text := resultText(t, result); !strings.Contains(text, `"health_score": 65`) {
		t.Errorf("handleGetProjectHealth() output missing score:\n%s", text)
	}

	_, err = server.handleGetProjectHealth(context.Background(), requestWith(map[string]interface{}{
		"name": "ghost",
	}))
	if err == nil {
		t.Error("handleGetProjectHealth() error = nil for unknown project")
	}
}

func TestServer_handleRefreshProject(t *testing.T) {
	project, _ := domain.NewProject("alpha", "/home/dev/alpha")
	mock := &mockProvider{projects: []*domain.Project{project}}
	server := NewServer(mock)

	_, err := server.handleRefreshProject(context.Background(), requestWith(map[string]interface{}{
		"name": "alpha",
	}))
	if err != nil {
		t.Fatalf("handleRefreshProject() error = %v", err)
	}
	if len(mock.refreshed) != 1 || mock.refreshed[0] != "alpha" {
		t.Errorf("handleRefreshProject() refreshed = %v, want [alpha]", mock.refreshed)
	}
}
