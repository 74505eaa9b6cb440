package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepoRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    RepoRef
		wantErr bool
	}{
		{name: "owner/name", input: "golang/go", want: RepoRef{Owner: "golang", Name: "go"}},
		{name: "with ref", input: "golang/go@release-branch.go1.22", want: RepoRef{Owner: "golang", Name: "go", Ref: "release-branch.go1.22"}},
		{name: "git suffix", input: "golang/go.git", want: RepoRef{Owner: "golang", Name: "go"}},
		{name: "web url", input: "https://github.com/charmbracelet/glamour", want: RepoRef{Owner: "charmbracelet", Name: "glamour"}},
		{name: "web url with tree", input: "https://github.com/a/b/tree/feature/x", want: RepoRef{Owner: "a", Name: "b", Ref: "feature/x"}},
		{name: "surrounding whitespace", input: "  a/b  ", want: RepoRef{Owner: "a", Name: "b"}},
		{name: "empty", input: "", wantErr: true},
		{name: "missing name", input: "golang", wantErr: true},
		{name: "too many parts", input: "a/b/c", wantErr: true},
		{name: "url without repo", input: "https://github.com/golang", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRepoRef(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepoRef_String(t *testing.T) {
	assert.Equal(t, "a/b", RepoRef{Owner: "a", Name: "b"}.String())
	assert.Equal(t, "a/b@main", RepoRef{Owner: "a", Name: "b", Ref: "main"}.String())
	assert.True(t, RepoRef{}.IsZero())
}

func TestBuildTree(t *testing.T) {
	entries := []TreeEntry{
		{Path: "README.md", Type: EntryFile, URL: "u1", Size: 10},
		{Path: "src", Type: EntryFolder},
		{Path: "src/main.go", Type: EntryFile, URL: "u2", Size: 20},
		{Path: "docs/guide/intro.md", Type: EntryFile, URL: "u3"},
		{Path: "Alpha.txt", Type: EntryFile},
	}

	roots := BuildTree(entries)

	require.Len(t, roots, 4)
	// Folders first, then files, case-insensitive by name.
	assert.Equal(t, "docs", roots[0].Name)
	assert.Equal(t, "src", roots[1].Name)
	assert.Equal(t, "Alpha.txt", roots[2].Name)
	assert.Equal(t, "README.md", roots[3].Name)

	// Implicit folders are created for nested paths.
	require.Len(t, roots[0].Children, 1)
	guide := roots[0].Children[0]
	assert.True(t, guide.IsFolder())
	assert.Equal(t, "docs/guide", guide.Path)
	require.Len(t, guide.Children, 1)
	assert.Equal(t, FileDescriptor{Path: "docs/guide/intro.md", Name: "intro.md", URL: "u3"}, guide.Children[0].Descriptor())

	require.Len(t, roots[1].Children, 1)
	assert.Equal(t, int64(20), roots[1].Children[0].Size)
}

func TestBuildTree_Empty(t *testing.T) {
	assert.Empty(t, BuildTree(nil))
}
