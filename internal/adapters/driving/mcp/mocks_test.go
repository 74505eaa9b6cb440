package mcp

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/services"
)

// mockLoader is a mock implementation of driving.ContentLoader. URLs in
// texts load as text, URLs in failures fail that many times, anything else
// loads as a payload that is not valid UTF-8.
type mockLoader struct {
	mu       sync.Mutex
	texts    map[string]string
	failures map[string]int
}

func (m *mockLoader) Load(_ context.Context, desc domain.FileDescriptor) (*domain.LoadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures[desc.URL] > 0 {
		m.failures[desc.URL]--
		return nil, errors.Join(domain.ErrFetchFailed, errors.New("connection reset"))
	}
	if text, ok := m.texts[desc.URL]; ok {
		return &domain.LoadResult{Phase: domain.PhaseReady, Content: text, CanRenderAsText: true}, nil
	}
	return &domain.LoadResult{
		Phase:   domain.PhaseReady,
		Content: base64.StdEncoding.EncodeToString([]byte{0x41, 0xff, 0x42}),
	}, nil
}

func (m *mockLoader) SetMaxFileSize(int64) {}

func (m *mockLoader) Close() error { return nil }

// mockTrees is a mock implementation of driven.TreeProvider.
type mockTrees struct {
	tree *domain.RepoTree
}

func (m *mockTrees) ListTree(_ context.Context, repo domain.RepoRef) (*domain.RepoTree, error) {
	tree := *m.tree
	tree.Repo = repo
	return &tree, nil
}

var testRepo = domain.RepoRef{Owner: "octo", Name: "hello", Ref: "main"}

func testTree() *domain.RepoTree {
	return &domain.RepoTree{Entries: []domain.TreeEntry{
		{Path: "README.md", Type: domain.EntryFile, URL: "u/readme", Size: 7},
		{Path: "cmd", Type: domain.EntryFolder},
		{Path: "cmd/main.go", Type: domain.EntryFile, URL: "u/main", Size: 40},
		{Path: "internal/server/server.go", Type: domain.EntryFile, URL: "u/server", Size: 30},
		{Path: "assets/logo.bin", Type: domain.EntryFile, URL: "u/logo", Size: 3},
		{Path: "flaky.txt", Type: domain.EntryFile, URL: "u/flaky", Size: 5},
	}}
}

// newTestServer wires a server over real services and a loaded tree.
func newTestServer(t *testing.T) (*Server, *services.SessionService) {
	t.Helper()

	loader := &mockLoader{
		texts: map[string]string{
			"u/readme": "# Hello",
			"u/main":   "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}",
			"u/server": "package server",
			"u/flaky":  "back",
		},
		failures: map[string]int{"u/flaky": 1},
	}
	session := services.NewSessionService(loader)
	t.Cleanup(func() { session.Close() })

	explorer := services.NewExplorerService(&mockTrees{tree: testTree()})
	require.NoError(t, explorer.Load(context.Background(), testRepo))

	server, err := NewServer(&Ports{
		Session:    session,
		Explorer:   explorer,
		Dispatcher: services.NewDispatcher(),
		Overrider:  services.NewOverrider(session, services.NewDecoderFactory()),
	})
	require.NoError(t, err)
	t.Cleanup(func() { server.Close() })
	return server, session
}
