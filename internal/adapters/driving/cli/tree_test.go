package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reposcope/internal/core/domain"
)

func TestTreeCmd_Default(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := execute(t, "tree", "octo/hello@main")

	require.NoError(t, err)
	assert.Equal(t, domain.RepoRef{Owner: "octo", Name: "hello", Ref: "main"}, env.trees.repo)
	assert.Contains(t, out, "octo/hello@main")
	assert.Contains(t, out, "cmd/")
	assert.Contains(t, out, "main.go (26 B)")
	assert.Contains(t, out, "5 files")
}

func TestTreeCmd_FlatWithPattern(t *testing.T) {
	newTestEnv(t)

	out, _, err := execute(t, "tree", "octo/hello", "--flat", "--pattern", "assets/**")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.ElementsMatch(t, []string{"assets/logo.bin", "assets/video.mp4"}, lines)
}

func TestTreeCmd_JSON(t *testing.T) {
	newTestEnv(t)

	out, _, err := execute(t, "tree", "octo/hello", "--json", "-p", "*.md")

	require.NoError(t, err)
	var files []treeFile
	require.NoError(t, json.Unmarshal([]byte(out), &files))
	assert.Equal(t, []treeFile{{Path: "README.md", Size: 13}}, files)
}

func TestTreeCmd_BadPattern(t *testing.T) {
	newTestEnv(t)

	_, _, err := execute(t, "tree", "octo/hello", "--pattern", "[a-")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTreeCmd_Truncated(t *testing.T) {
	env := newTestEnv(t)
	env.trees.tree.Truncated = true

	_, errOut, err := execute(t, "tree", "octo/hello", "--flat")

	require.NoError(t, err)
	assert.Contains(t, errOut, "listing is incomplete")
}

func TestTreeCmd_RemoteError(t *testing.T) {
	env := newTestEnv(t)
	env.trees.err = domain.ErrAuthRequired

	_, _, err := execute(t, "tree", "octo/private")

	assert.ErrorIs(t, err, domain.ErrAuthRequired)
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")
}

func TestTreeCmd_InvalidRepo(t *testing.T) {
	newTestEnv(t)

	_, _, err := execute(t, "tree", "hello")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
