package driven

import (
	"context"

	"github.com/custodia-labs/reposcope/internal/core/domain"
)

// FileFetcher retrieves file content from the repository host.
type FileFetcher interface {
	// GetFile returns the base64-encoded payload behind url.
	// url is the opaque handle from a FileDescriptor.
	GetFile(ctx context.Context, url string) (string, error)
}

// TreeProvider lists repository trees.
type TreeProvider interface {
	// ListTree returns every entry of the repository at repo.Ref,
	// or at the default branch when Ref is empty.
	ListTree(ctx context.Context, repo domain.RepoRef) (*domain.RepoTree, error)
}

// BlobCache stores fetched payloads keyed by their fetch URL.
// Blob URLs are content addressed, so entries never go stale.
type BlobCache interface {
	// Get returns the payload for url, or domain.ErrNotFound.
	Get(ctx context.Context, url string) (string, error)

	// Put stores the payload for url, replacing any existing entry.
	Put(ctx context.Context, url, payload string) error

	// Delete removes the entry for url. Missing entries are not an error.
	Delete(ctx context.Context, url string) error

	// Stats reports the number of entries and their total payload size.
	Stats(ctx context.Context) (entries int, bytes int64, err error)

	// Clear removes every entry.
	Clear(ctx context.Context) error
}
