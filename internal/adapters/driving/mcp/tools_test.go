package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reposcope/internal/core/domain"
)

func TestServer_handleListFiles(t *testing.T) {
	ctx := context.Background()
	server, _ := newTestServer(t)

	t.Run("lists every file", func(t *testing.T) {
		_, output, err := server.handleListFiles(ctx, nil, ListFilesInput{})

		require.NoError(t, err)
		assert.Equal(t, "octo/hello@main", output.Repository)
		assert.Equal(t, 5, output.Count)
		assert.False(t, output.Truncated)
	})

	t.Run("filters by pattern", func(t *testing.T) {
		_, output, err := server.handleListFiles(ctx, nil, ListFilesInput{Pattern: "**/*.go"})

		require.NoError(t, err)
		paths := make([]string, 0, len(output.Files))
		for _, f := range output.Files {
			paths = append(paths, f.Path)
		}
		assert.ElementsMatch(t, []string{"cmd/main.go", "internal/server/server.go"}, paths)
	})

	t.Run("applies limit", func(t *testing.T) {
		_, output, err := server.handleListFiles(ctx, nil, ListFilesInput{Limit: 2})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Len(t, output.Files, 2)
	})

	t.Run("bad pattern returns error", func(t *testing.T) {
		_, _, err := server.handleListFiles(ctx, nil, ListFilesInput{Pattern: "[a-"})
		require.Error(t, err)
	})
}

func TestServer_handleOpenFile(t *testing.T) {
	ctx := context.Background()

	t.Run("opens and waits for the load", func(t *testing.T) {
		server, session := newTestServer(t)

		_, output, err := server.handleOpenFile(ctx, nil, PathInput{Path: "README.md"})

		require.NoError(t, err)
		assert.Equal(t, "README.md", output.Path)
		assert.Equal(t, "ready", output.Phase)
		assert.Equal(t, domain.KindStructuredText.String(), output.Renderer)
		assert.True(t, output.CanRenderAsText)
		assert.True(t, output.Active)
		assert.Len(t, session.Documents(), 1)
	})

	t.Run("opening twice keeps one tab", func(t *testing.T) {
		server, session := newTestServer(t)

		_, _, err := server.handleOpenFile(ctx, nil, PathInput{Path: "cmd/main.go"})
		require.NoError(t, err)
		_, _, err = server.handleOpenFile(ctx, nil, PathInput{Path: "README.md"})
		require.NoError(t, err)
		_, output, err := server.handleOpenFile(ctx, nil, PathInput{Path: "cmd/main.go"})
		require.NoError(t, err)

		assert.True(t, output.Active)
		assert.Len(t, session.Documents(), 2)
		assert.Equal(t, 0, session.ActiveIndex())
	})

	t.Run("non text file is unsupported", func(t *testing.T) {
		server, _ := newTestServer(t)

		_, output, err := server.handleOpenFile(ctx, nil, PathInput{Path: "assets/logo.bin"})

		require.NoError(t, err)
		assert.Equal(t, "unsupported", output.Phase)
		assert.Equal(t, domain.KindUnsupported.String(), output.Renderer)
	})

	t.Run("reopening a failed file retries it", func(t *testing.T) {
		server, _ := newTestServer(t)

		_, output, err := server.handleOpenFile(ctx, nil, PathInput{Path: "flaky.txt"})
		require.NoError(t, err)
		assert.Equal(t, "failed", output.Phase)
		assert.Contains(t, output.Error, "connection reset")

		_, output, err = server.handleOpenFile(ctx, nil, PathInput{Path: "flaky.txt"})
		require.NoError(t, err)
		assert.Equal(t, "ready", output.Phase)
		assert.Empty(t, output.Error)
	})

	t.Run("folder returns error", func(t *testing.T) {
		server, _ := newTestServer(t)

		_, _, err := server.handleOpenFile(ctx, nil, PathInput{Path: "cmd"})
		assert.ErrorIs(t, err, domain.ErrIsDirectory)
	})

	t.Run("unknown path returns error", func(t *testing.T) {
		server, _ := newTestServer(t)

		_, _, err := server.handleOpenFile(ctx, nil, PathInput{Path: "nope.go"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleReadDocument(t *testing.T) {
	ctx := context.Background()
	server, _ := newTestServer(t)
	_, _, err := server.handleOpenFile(ctx, nil, PathInput{Path: "cmd/main.go"})
	require.NoError(t, err)

	t.Run("reads whole text", func(t *testing.T) {
		_, output, err := server.handleReadDocument(ctx, nil, ReadDocumentInput{Path: "cmd/main.go"})

		require.NoError(t, err)
		assert.Equal(t, 5, output.TotalLines)
		assert.Equal(t, 0, output.StartLine)
		assert.Equal(t, 5, output.EndLine)
		assert.Contains(t, output.Content, "func main()")
	})

	t.Run("reads a window", func(t *testing.T) {
		_, output, err := server.handleReadDocument(ctx, nil, ReadDocumentInput{Path: "cmd/main.go", Offset: 2, Limit: 2})

		require.NoError(t, err)
		assert.Equal(t, "func main() {\n\tprintln(\"hi\")", output.Content)
		assert.Equal(t, 2, output.StartLine)
		assert.Equal(t, 4, output.EndLine)
	})

	t.Run("offset past the end is empty", func(t *testing.T) {
		_, output, err := server.handleReadDocument(ctx, nil, ReadDocumentInput{Path: "cmd/main.go", Offset: 99})

		require.NoError(t, err)
		assert.Empty(t, output.Content)
		assert.Equal(t, 5, output.StartLine)
	})

	t.Run("document without text has a note", func(t *testing.T) {
		_, _, err := server.handleOpenFile(ctx, nil, PathInput{Path: "assets/logo.bin"})
		require.NoError(t, err)

		_, output, err := server.handleReadDocument(ctx, nil, ReadDocumentInput{Path: "assets/logo.bin"})

		require.NoError(t, err)
		assert.Empty(t, output.Content)
		assert.Contains(t, output.Note, "force_render")
	})

	t.Run("closed document returns error", func(t *testing.T) {
		_, _, err := server.handleReadDocument(ctx, nil, ReadDocumentInput{Path: "README.md"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleListDocuments(t *testing.T) {
	ctx := context.Background()
	server, _ := newTestServer(t)

	_, output, err := server.handleListDocuments(ctx, nil, EmptyInput{})
	require.NoError(t, err)
	assert.Empty(t, output.Documents)

	for _, p := range []string{"README.md", "cmd/main.go"} {
		_, _, err := server.handleOpenFile(ctx, nil, PathInput{Path: p})
		require.NoError(t, err)
	}

	_, output, err = server.handleListDocuments(ctx, nil, EmptyInput{})
	require.NoError(t, err)
	require.Len(t, output.Documents, 2)
	assert.Equal(t, "README.md", output.Documents[0].Path)
	assert.Equal(t, "main.go", output.Documents[1].Title)
	assert.Equal(t, 1, output.ActiveIndex)
	assert.True(t, output.Documents[1].Active)
	assert.False(t, output.Documents[0].Active)
}

func TestServer_handleCloseTab(t *testing.T) {
	ctx := context.Background()
	server, session := newTestServer(t)
	for _, p := range []string{"README.md", "cmd/main.go"} {
		_, _, err := server.handleOpenFile(ctx, nil, PathInput{Path: p})
		require.NoError(t, err)
	}

	_, output, err := server.handleCloseTab(ctx, nil, PathInput{Path: "cmd/main.go"})

	require.NoError(t, err)
	require.Len(t, output.Documents, 1)
	assert.Equal(t, "README.md", output.Documents[0].Path)
	assert.Equal(t, 0, session.ActiveIndex())

	_, _, err = server.handleCloseTab(ctx, nil, PathInput{Path: "cmd/main.go"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServer_handleCloseAll(t *testing.T) {
	ctx := context.Background()
	server, session := newTestServer(t)
	_, _, err := server.handleOpenFile(ctx, nil, PathInput{Path: "README.md"})
	require.NoError(t, err)

	_, output, err := server.handleCloseAll(ctx, nil, EmptyInput{})

	require.NoError(t, err)
	assert.Empty(t, output.Documents)
	assert.Empty(t, session.Documents())
}

func TestServer_handleForceRender(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes unsupported file as raw text", func(t *testing.T) {
		server, session := newTestServer(t)
		_, _, err := server.handleOpenFile(ctx, nil, PathInput{Path: "assets/logo.bin"})
		require.NoError(t, err)
		_, _, err = server.handleOpenFile(ctx, nil, PathInput{Path: "README.md"})
		require.NoError(t, err)

		_, output, err := server.handleForceRender(ctx, nil, PathInput{Path: "assets/logo.bin"})

		require.NoError(t, err)
		assert.True(t, output.Forced)
		assert.True(t, output.Active)
		assert.Equal(t, "ready", output.Phase)
		assert.Equal(t, domain.KindCode.String(), output.Renderer)

		doc, ok := session.Document("assets/logo.bin")
		require.True(t, ok)
		assert.Equal(t, "AÿB", doc.Content)
	})

	t.Run("second override is rejected", func(t *testing.T) {
		server, _ := newTestServer(t)
		_, _, err := server.handleOpenFile(ctx, nil, PathInput{Path: "README.md"})
		require.NoError(t, err)

		_, _, err = server.handleForceRender(ctx, nil, PathInput{Path: "README.md"})
		require.NoError(t, err)
		_, _, err = server.handleForceRender(ctx, nil, PathInput{Path: "README.md"})
		assert.Error(t, err)
	})

	t.Run("document must be open", func(t *testing.T) {
		server, _ := newTestServer(t)

		_, _, err := server.handleForceRender(ctx, nil, PathInput{Path: "README.md"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("requires an overrider", func(t *testing.T) {
		server, _ := newTestServer(t)
		server.ports.Overrider = nil

		_, _, err := server.handleForceRender(ctx, nil, PathInput{Path: "README.md"})
		assert.ErrorIs(t, err, ErrOverrideUnavailable)
	})
}
