package driving

import (
	"context"

	"github.com/custodia-labs/reposcope/internal/core/domain"
)

// TreeRow is one visible row of the explorer.
type TreeRow struct {
	Node     *domain.TreeNode
	Level    int
	Expanded bool
}

// ExplorerService browses a repository tree.
type ExplorerService interface {
	// Load fetches the tree for repo, replacing any loaded tree.
	Load(ctx context.Context, repo domain.RepoRef) error

	// Repo returns the loaded repository, zero if none.
	Repo() domain.RepoRef

	// Rows returns the visible rows given the expanded folders.
	Rows() []TreeRow

	// Toggle expands or collapses the folder at path.
	Toggle(path string) error

	// Select resolves path to a file descriptor.
	// Returns domain.ErrIsDirectory for folders.
	Select(path string) (domain.FileDescriptor, error)

	// Match returns the files whose paths match a doublestar pattern.
	Match(pattern string) ([]domain.FileDescriptor, error)

	// Files returns every file in the tree.
	Files() []domain.FileDescriptor

	// Truncated reports whether the host returned a partial listing.
	Truncated() bool
}
