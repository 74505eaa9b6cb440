package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/ports/driven"
	"github.com/custodia-labs/reposcope/internal/core/ports/driving"
	"github.com/custodia-labs/reposcope/internal/logger"
)

// Ensure ContentLoader implements the interface.
var _ driving.ContentLoader = (*ContentLoader)(nil)

// ContentLoader fetches file payloads and decodes them to text.
// It owns one decode channel for its whole lifetime.
type ContentLoader struct {
	fetcher     driven.FileFetcher
	decoder     driving.DecodeChannel
	maxFileSize atomic.Int64
}

// NewContentLoader creates a loader. A maxFileSize of zero or less selects
// domain.DefaultMaxFileSize.
func NewContentLoader(
	fetcher driven.FileFetcher,
	newDecoder driving.DecoderFactory,
	maxFileSize int64,
) *ContentLoader {
	if newDecoder == nil {
		newDecoder = NewDecoderFactory()
	}
	l := &ContentLoader{
		fetcher: fetcher,
		decoder: newDecoder(),
	}
	l.SetMaxFileSize(maxFileSize)
	return l
}

// SetMaxFileSize changes the size limit for subsequent loads.
func (l *ContentLoader) SetMaxFileSize(size int64) {
	if size <= 0 {
		size = domain.DefaultMaxFileSize
	}
	l.maxFileSize.Store(size)
}

// MaxFileSize returns the current size limit.
func (l *ContentLoader) MaxFileSize() int64 {
	return l.maxFileSize.Load()
}

// Load fetches and decodes the file behind desc.
func (l *ContentLoader) Load(ctx context.Context, desc domain.FileDescriptor) (*domain.LoadResult, error) {
	if desc.Size >= l.MaxFileSize() {
		logger.Debug("Skipping %s: %d bytes exceeds limit", desc.Path, desc.Size)
		return &domain.LoadResult{Phase: domain.PhaseTooLarge}, nil
	}

	payload, err := l.fetcher.GetFile(ctx, desc.URL)
	if err != nil {
		if errors.Is(err, domain.ErrFetchFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, desc.Path, err)
	}

	fileType := domain.DetectFileType(nameOf(desc))
	if fileType.Category.IsBinary() {
		logger.Debug("Loaded %s as raw %s payload", desc.Path, fileType.Type)
		return &domain.LoadResult{Phase: domain.PhaseReady, Content: payload}, nil
	}

	var res domain.DecodeResult
	select {
	case res = <-l.decoder.Decode(ctx, domain.DecodeRequest{Payload: payload}):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if res.Err != nil {
		logger.Debug("Decode failed for %s: %v", desc.Path, res.Err)
		return &domain.LoadResult{Phase: domain.PhaseReady, Content: payload}, nil
	}
	return &domain.LoadResult{Phase: domain.PhaseReady, Content: res.Text, CanRenderAsText: true}, nil
}

// Close releases the loader's decode channel.
func (l *ContentLoader) Close() error {
	return l.decoder.Close()
}

func nameOf(desc domain.FileDescriptor) string {
	if desc.Name != "" {
		return desc.Name
	}
	return domain.BaseName(desc.Path)
}
