package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/ports/driven"
	"github.com/custodia-labs/reposcope/internal/logger"
)

// Ensure CachingFetcher implements the interface.
var _ driven.FileFetcher = (*CachingFetcher)(nil)

// CachingFetcher serves payloads from a BlobCache and fills it on misses.
// Cache failures are logged and never fail a fetch.
type CachingFetcher struct {
	next  driven.FileFetcher
	cache driven.BlobCache
}

// NewCachingFetcher wraps next. A nil cache returns next unchanged.
func NewCachingFetcher(next driven.FileFetcher, cache driven.BlobCache) driven.FileFetcher {
	if cache == nil {
		return next
	}
	return &CachingFetcher{next: next, cache: cache}
}

// GetFile returns the cached payload for url, fetching it on a miss.
func (f *CachingFetcher) GetFile(ctx context.Context, url string) (string, error) {
	payload, err := f.cache.Get(ctx, url)
	if err == nil {
		logger.Debug("Cache hit for %s", url)
		return payload, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		logger.Warn("Blob cache read failed for %s: %v", url, err)
	}

	payload, err = f.next.GetFile(ctx, url)
	if err != nil {
		return "", err
	}

	if err := f.cache.Put(ctx, url, payload); err != nil {
		logger.Warn("Blob cache write failed for %s: %v", url, err)
	}
	return payload, nil
}
