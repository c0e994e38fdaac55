package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duggerlink/dugger/internal/adapters/storage"
	"github.com/duggerlink/dugger/internal/domain"
	"github.com/duggerlink/dugger/internal/ports"
)

// fakeInspector serves per-path canned snapshots without any subprocesses.
type fakeInspector struct {
	states map[string]domain.GitState
	errs   map[string]error
}

func newFakeInspector() *fakeInspector {
	return &fakeInspector{
		states: make(map[string]domain.GitState),
		errs:   make(map[string]error),
	}
}

var _ ports.GitInspector = (*fakeInspector)(nil)

func (f *fakeInspector) IsRepository(ctx context.Context, path string) bool {
	state, ok := f.states[path]
	return ok && state.IsGitRepo
}

func (f *fakeInspector) Summary(ctx context.Context, path string) (domain.GitState, error) {
	if err, ok := f.errs[path]; ok {
		return domain.GitState{}, err
	}
	if state, ok := f.states[path]; ok {
		return state, nil
	}
	return domain.DefaultGitState(), nil
}

func (f *fakeInspector) Branch(ctx context.Context, path string) (string, error) {
	state, err := f.Summary(ctx, path)
	return state.Branch, err
}

func (f *fakeInspector) IsDirty(ctx context.Context, path string) (bool, error) {
	state, err := f.Summary(ctx, path)
	return state.IsDirty, err
}

func (f *fakeInspector) CommitHash(ctx context.Context, path string) (string, error) {
	state, err := f.Summary(ctx, path)
	return state.CommitHash, err
}

func (f *fakeInspector) UntrackedFiles(ctx context.Context, path string) ([]string, error) {
	state, err := f.Summary(ctx, path)
	return state.UntrackedFiles, err
}

func (f *fakeInspector) CommitCount(ctx context.Context, path string) (int, error) {
	state, err := f.Summary(ctx, path)
	return state.CommitCount, err
}

func (f *fakeInspector) RemoteURL(ctx context.Context, path string) (string, error) {
	state, err := f.Summary(ctx, path)
	if state.RemoteURL == nil {
		return "", err
	}
	return *state.RemoteURL, err
}

// recordingNotifier captures health drop notifications.
type recordingNotifier struct {
	drops []string
}

func (r *recordingNotifier) NotifyHealthDrop(project string, score, threshold int) error {
	r.drops = append(r.drops, project)
	return nil
}

func newTestService(t *testing.T) (*ProjectService, *fakeInspector) {
	t.Helper()
	store, err := storage.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	inspector := newFakeInspector()
	return NewProjectService(store, inspector), inspector
}

func cleanState(branch string) domain.GitState {
	return domain.GitState{IsGitRepo: true, Branch: branch, UntrackedFiles: []string{}}
}

func dirtyState(branch string) domain.GitState {
	return domain.GitState{IsGitRepo: true, Branch: branch, IsDirty: true, UntrackedFiles: []string{}}
}

func TestRegister(t *testing.T) {
	svc, inspector := newTestService(t)
	ctx := context.Background()
	inspector.states["/home/dev/dugger"] = cleanState("main")

	project, err := svc.Register(ctx, RegisterProjectRequest{Path: "/home/dev/dugger"})
	require.NoError(t, err)

	// Name defaults to the directory basename.
	assert.Equal(t, "dugger", project.Name)
	assert.True(t, project.HasCapability("git"))
	require.NotNil(t, project.Git)
	assert.Equal(t, "main", project.Git.Branch)
	// A clean repository earns the bonus, clamped at the maximum.
	assert.Equal(t, domain.MaxHealthScore, project.HealthScore)

	stored, err := svc.GetProject(ctx, "dugger")
	require.NoError(t, err)
	assert.Equal(t, project.ID, stored.ID)
}

func TestRegisterNonRepository(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	project, err := svc.Register(ctx, RegisterProjectRequest{
		Name: "docs",
		Path: "/home/dev/docs",
	})
	require.NoError(t, err)

	assert.False(t, project.HasCapability("git"))
	require.NotNil(t, project.Git)
	assert.False(t, project.Git.IsGitRepo)
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterProjectRequest{Name: "dup", Path: "/home/dev/a"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterProjectRequest{Name: "dup", Path: "/home/dev/b"})
	assert.ErrorIs(t, err, domain.ErrProjectExists)
}

func TestRefreshRecomputesHealth(t *testing.T) {
	svc, inspector := newTestService(t)
	ctx := context.Background()

	inspector.states["/home/dev/dugger"] = cleanState("main")
	_, err := svc.Register(ctx, RegisterProjectRequest{Path: "/home/dev/dugger"})
	require.NoError(t, err)

	// The tree gets dirty with a pile of untracked files.
	inspector.states["/home/dev/dugger"] = domain.GitState{
		IsGitRepo:      true,
		Branch:         "main",
		IsDirty:        true,
		UntrackedFiles: []string{"a", "b", "c", "d", "e", "f"},
	}

	project, err := svc.Refresh(ctx, "dugger")
	require.NoError(t, err)

	// 100 base, -10 dirty, -5 untracked over the limit.
	assert.Equal(t, 85, project.HealthScore)
	assert.True(t, project.Git.IsDirty)

	// The recomputation starts from the baseline, not the old score.
	inspector.states["/home/dev/dugger"] = cleanState("main")
	project, err = svc.Refresh(ctx, "dugger")
	require.NoError(t, err)
	assert.Equal(t, domain.MaxHealthScore, project.HealthScore)
}

func TestRefreshNotifiesOnHealthDrop(t *testing.T) {
	svc, inspector := newTestService(t)
	ctx := context.Background()

	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)
	svc.SetBaseScore(85)

	inspector.states["/home/dev/dugger"] = cleanState("main")
	_, err := svc.Register(ctx, RegisterProjectRequest{Path: "/home/dev/dugger"})
	require.NoError(t, err)

	// 85 base, -10 dirty: drops from 90 past the threshold of 80.
	inspector.states["/home/dev/dugger"] = dirtyState("main")
	project, err := svc.Refresh(ctx, "dugger")
	require.NoError(t, err)

	assert.Equal(t, 75, project.HealthScore)
	assert.Equal(t, []string{"dugger"}, notifier.drops)

	// Staying unhealthy does not notify again.
	_, err = svc.Refresh(ctx, "dugger")
	require.NoError(t, err)
	assert.Len(t, notifier.drops, 1)
}

func TestRefreshMissingProject(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Refresh(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestRefreshAll(t *testing.T) {
	svc, inspector := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"alpha", "beta", "gamma"} {
		path := "/home/dev/" + name
		inspector.states[path] = cleanState("main")
		_, err := svc.Register(ctx, RegisterProjectRequest{Path: path})
		require.NoError(t, err)
	}

	inspector.states["/home/dev/beta"] = dirtyState("main")

	projects, err := svc.RefreshAll(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 3)

	byName := make(map[string]*domain.Project)
	for _, p := range projects {
		byName[p.Name] = p
	}
	assert.Equal(t, domain.MaxHealthScore, byName["alpha"].HealthScore)
	assert.Equal(t, 90, byName["beta"].HealthScore)
}

func TestRefreshAllCollectsFirstError(t *testing.T) {
	svc, inspector := newTestService(t)
	ctx := context.Background()

	inspector.states["/home/dev/good"] = cleanState("main")
	inspector.states["/home/dev/bad"] = cleanState("main")
	for _, name := range []string{"good", "bad"} {
		_, err := svc.Register(ctx, RegisterProjectRequest{Path: "/home/dev/" + name})
		require.NoError(t, err)
	}

	boom := errors.New("boom")
	inspector.errs["/home/dev/bad"] = boom
	inspector.states["/home/dev/good"] = dirtyState("main")

	projects, err := svc.RefreshAll(ctx)
	assert.ErrorIs(t, err, boom)
	require.Len(t, projects, 2)

	// The healthy project was still refreshed.
	for _, p := range projects {
		if p.Name == "good" {
			assert.Equal(t, 90, p.HealthScore)
		}
	}
}

func TestRemoveProject(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterProjectRequest{Name: "gone", Path: "/home/dev/gone"})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveProject(ctx, "gone"))

	_, err = svc.GetProject(ctx, "gone")
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	assert.ErrorIs(t, svc.RemoveProject(ctx, "gone"), domain.ErrProjectNotFound)
}

func TestCheckClean(t *testing.T) {
	svc, inspector := newTestService(t)
	ctx := context.Background()

	inspector.states["/home/dev/clean"] = cleanState("main")
	inspector.states["/home/dev/dirty"] = dirtyState("main")

	clean, state, err := svc.CheckClean(ctx, "/home/dev/clean")
	require.NoError(t, err)
	assert.True(t, clean)
	assert.True(t, state.IsGitRepo)

	clean, _, err = svc.CheckClean(ctx, "/home/dev/dirty")
	require.NoError(t, err)
	assert.False(t, clean)

	// A plain directory is trivially clean.
	clean, state, err = svc.CheckClean(ctx, "/home/dev/plain")
	require.NoError(t, err)
	assert.True(t, clean)
	assert.False(t, state.IsGitRepo)
}

func TestScan(t *testing.T) {
	svc, inspector := newTestService(t)
	ctx := context.Background()

	root := t.TempDir()
	mkRepo := func(rel string) string {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Join(path, ".git"), 0755))
		inspector.states[path] = cleanState("main")
		return path
	}

	repoA := mkRepo("alpha")
	repoB := mkRepo("tools/beta")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "plain"), 0755))
	// Hidden and dependency directories are never descended into.
	mkRepo(".hidden/skipped")
	mkRepo("node_modules/skipped")
	// A repository nested inside another one is not registered separately.
	require.NoError(t, os.MkdirAll(filepath.Join(repoA, "nested", ".git"), 0755))

	projects, err := svc.Scan(ctx, root)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, repoA, projects[0].Path)
	assert.Equal(t, repoB, projects[1].Path)

	// A second scan finds nothing new.
	projects, err = svc.Scan(ctx, root)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestScanRecognizesWorktreeFile(t *testing.T) {
	svc, inspector := newTestService(t)
	ctx := context.Background()

	root := t.TempDir()
	wt := filepath.Join(root, "worktree")
	require.NoError(t, os.MkdirAll(wt, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(wt, ".git"), []byte("gitdir: /somewhere/else\n"), 0644))
	inspector.states[wt] = cleanState("main")

	projects, err := svc.Scan(ctx, root)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, wt, projects[0].Path)
}
