// Package memory provides in-memory implementations of driven ports.
package memory

import (
	"container/list"
	"context"
	"sync"

	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/ports/driven"
)

// Ensure BlobCache implements the interface.
var _ driven.BlobCache = (*BlobCache)(nil)

type blobEntry struct {
	url     string
	payload string
}

// BlobCache is an in-memory, least-recently-used implementation of driven.BlobCache.
// It backs sessions that run with the on-disk cache disabled.
type BlobCache struct {
	mu       sync.Mutex
	maxBytes int64
	size     int64
	order    *list.List
	entries  map[string]*list.Element
}

// NewBlobCache creates a cache holding at most maxBytes of payload.
// A maxBytes of zero or less means unbounded.
func NewBlobCache(maxBytes int64) *BlobCache {
	return &BlobCache{
		maxBytes: maxBytes,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// Get returns the payload for url and marks it recently used.
func (c *BlobCache) Get(_ context.Context, url string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[url]
	if !ok {
		return "", domain.ErrNotFound
	}
	c.order.MoveToFront(el)
	return el.Value.(*blobEntry).payload, nil
}

// Put stores payload for url. Payloads larger than the whole budget are not kept.
func (c *BlobCache) Put(_ context.Context, url, payload string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.remove(url)
	n := int64(len(payload))
	if c.maxBytes > 0 && n > c.maxBytes {
		return nil
	}

	c.entries[url] = c.order.PushFront(&blobEntry{url: url, payload: payload})
	c.size += n

	for c.maxBytes > 0 && c.size > c.maxBytes {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.remove(oldest.Value.(*blobEntry).url)
	}
	return nil
}

// Delete removes the entry for url.
func (c *BlobCache) Delete(_ context.Context, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(url)
	return nil
}

// Stats reports the entry count and total payload bytes.
func (c *BlobCache) Stats(_ context.Context) (int, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries), c.size, nil
}

// Clear removes every entry.
func (c *BlobCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element)
	c.size = 0
	return nil
}

// remove must be called with mu held.
func (c *BlobCache) remove(url string) {
	el, ok := c.entries[url]
	if !ok {
		return
	}
	c.order.Remove(el)
	delete(c.entries, url)
	c.size -= int64(len(el.Value.(*blobEntry).payload))
}
