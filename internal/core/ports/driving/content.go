package driving

import (
	"context"

	"github.com/custodia-labs/reposcope/internal/core/domain"
)

// ContentLoader fetches and decodes one file.
type ContentLoader interface {
	// Load returns the phase and content for desc. Files at or above the
	// size limit resolve to PhaseTooLarge without a fetch. Fetch failures
	// are returned as errors wrapping domain.ErrFetchFailed.
	Load(ctx context.Context, desc domain.FileDescriptor) (*domain.LoadResult, error)

	// SetMaxFileSize changes the size limit for subsequent loads.
	SetMaxFileSize(size int64)

	// Close releases the loader's decode worker.
	Close() error
}

// DecodeChannel turns base64 payloads into text off the caller's goroutine.
// Each consuming component owns one instance and must Close it.
type DecodeChannel interface {
	// Decode submits a request. Exactly one result is delivered on the
	// returned channel, including after Close (domain.ErrWorkerClosed).
	Decode(ctx context.Context, req domain.DecodeRequest) <-chan domain.DecodeResult

	// Close terminates the worker. It is safe to call more than once.
	Close() error
}

// DecoderFactory creates a decode channel for a newly mounted component.
type DecoderFactory func() DecodeChannel

// Overrider runs the manual "render as text" protocol for one mounted view.
type Overrider interface {
	// Override force-decodes the document at path and commits the text.
	Override(ctx context.Context, path string) error

	// Close releases the overrider's decode worker.
	Close() error
}
