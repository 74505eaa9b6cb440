package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reposcope/internal/adapters/driven/config/file"
	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/ports/driving"
	"github.com/custodia-labs/reposcope/internal/core/services"
)

// mockLoader implements driving.ContentLoader with canned results per URL.
type mockLoader struct {
	mu       sync.Mutex
	texts    map[string]string
	tooLarge map[string]bool
	failing  map[string]bool
	maxSize  int64
}

func (m *mockLoader) Load(_ context.Context, desc domain.FileDescriptor) (*domain.LoadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.tooLarge[desc.URL]:
		return &domain.LoadResult{Phase: domain.PhaseTooLarge}, nil
	case m.failing[desc.URL]:
		return nil, errors.Join(domain.ErrFetchFailed, errors.New("502 bad gateway"))
	}
	if text, ok := m.texts[desc.URL]; ok {
		return &domain.LoadResult{Phase: domain.PhaseReady, Content: text, CanRenderAsText: true}, nil
	}
	return &domain.LoadResult{
		Phase:   domain.PhaseReady,
		Content: base64.StdEncoding.EncodeToString([]byte{0x41, 0xff, 0x42}),
	}, nil
}

func (m *mockLoader) SetMaxFileSize(size int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxSize = size
}

func (m *mockLoader) Close() error { return nil }

// mockTrees implements driven.TreeProvider.
type mockTrees struct {
	tree *domain.RepoTree
	err  error
	repo domain.RepoRef
}

func (m *mockTrees) ListTree(_ context.Context, repo domain.RepoRef) (*domain.RepoTree, error) {
	m.repo = repo
	if m.err != nil {
		return nil, m.err
	}
	tree := *m.tree
	tree.Repo = repo
	return &tree, nil
}

// mockCache implements CacheAdmin.
type mockCache struct {
	entries int
	bytes   int64
	cleared bool
	err     error
}

func (m *mockCache) Stats(context.Context) (int, int64, error) {
	return m.entries, m.bytes, m.err
}

func (m *mockCache) Clear(context.Context) error {
	m.cleared = true
	return m.err
}

func testTree() *domain.RepoTree {
	return &domain.RepoTree{Entries: []domain.TreeEntry{
		{Path: "README.md", Type: domain.EntryFile, URL: "u/readme", Size: 13},
		{Path: "cmd", Type: domain.EntryFolder},
		{Path: "cmd/main.go", Type: domain.EntryFile, URL: "u/main", Size: 26},
		{Path: "assets/logo.bin", Type: domain.EntryFile, URL: "u/logo", Size: 3},
		{Path: "assets/video.mp4", Type: domain.EntryFile, URL: "u/video", Size: 31_000_000},
		{Path: "broken.txt", Type: domain.EntryFile, URL: "u/broken", Size: 10},
	}}
}

// testEnv is a runtime over real services, mock remotes and a temp config dir.
type testEnv struct {
	runtime *Runtime
	loader  *mockLoader
	trees   *mockTrees
	closed  bool
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		loader: &mockLoader{
			texts: map[string]string{
				"u/readme": "# Hello\n\nWorld",
				"u/main":   "package main\n\nfunc main() {}",
			},
			tooLarge: map[string]bool{"u/video": true},
			failing:  map[string]bool{"u/broken": true},
		},
		trees: &mockTrees{tree: testTree()},
	}

	store, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	session := services.NewSessionService(env.loader)

	env.runtime = &Runtime{
		Session:    session,
		Explorer:   services.NewExplorerService(env.trees),
		Dispatcher: services.NewDispatcher(),
		Settings:   services.NewSettingsService(store),
		Loader:     env.loader,
		NewOverrider: func() driving.Overrider {
			return services.NewOverrider(session, services.NewDecoderFactory())
		},
		Close: func() error {
			env.closed = true
			return session.Close()
		},
	}

	SetRuntimeFactory(func(RuntimeOptions) (*Runtime, error) {
		return env.runtime, nil
	})
	t.Cleanup(func() {
		closeRuntime()
		SetRuntimeFactory(nil)
	})
	return env
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

// resetFlags restores every flag to its default; cobra keeps flag values
// between executions of the same command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	cmd.SetContext(nil) //nolint:staticcheck // cobra only inherits a parent context when the child's is nil
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// nopCloser records Close calls.
type nopCloser struct {
	closed bool
}

func (c *nopCloser) Close() error {
	c.closed = true
	return nil
}

var _ io.Closer = (*nopCloser)(nil)
