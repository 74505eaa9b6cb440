package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/ports/driven"
	"github.com/custodia-labs/reposcope/internal/core/ports/driving"
)

// --- Mock implementations for content pipeline testing ---

// mockFetcher returns canned payloads immediately.
type mockFetcher struct {
	mu       sync.Mutex
	payloads map[string]string
	errs     map[string]error
	calls    []string
}

var _ driven.FileFetcher = (*mockFetcher)(nil)

func newMockFetcher() *mockFetcher {
	return &mockFetcher{
		payloads: make(map[string]string),
		errs:     make(map[string]error),
	}
}

func (m *mockFetcher) withText(url, text string) *mockFetcher {
	return m.withBytes(url, []byte(text))
}

func (m *mockFetcher) withBytes(url string, data []byte) *mockFetcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads[url] = encodeBytes(data)
	return m
}

func (m *mockFetcher) withError(url string, err error) *mockFetcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[url] = err
	return m
}

func (m *mockFetcher) GetFile(_ context.Context, url string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, url)
	if err, ok := m.errs[url]; ok {
		return "", err
	}
	payload, ok := m.payloads[url]
	if !ok {
		return "", errors.New("no such blob")
	}
	return payload, nil
}

func (m *mockFetcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// pendingFetch is one fetch held open by scriptedFetcher.
type pendingFetch struct {
	url   string
	reply chan fetchReply
}

type fetchReply struct {
	payload string
	err     error
}

func (p *pendingFetch) respond(text string) {
	p.reply <- fetchReply{payload: encodeBytes([]byte(text))}
}

func (p *pendingFetch) fail(err error) {
	p.reply <- fetchReply{err: err}
}

// scriptedFetcher hands every fetch to the test, which resolves it.
type scriptedFetcher struct {
	calls chan *pendingFetch
}

func newScriptedFetcher() *scriptedFetcher {
	return &scriptedFetcher{calls: make(chan *pendingFetch, 16)}
}

func (s *scriptedFetcher) GetFile(ctx context.Context, url string) (string, error) {
	p := &pendingFetch{url: url, reply: make(chan fetchReply, 1)}
	s.calls <- p
	select {
	case r := <-p.reply:
		return r.payload, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// countingDecoder records requests before delegating to a real worker.
type countingDecoder struct {
	inner  driving.DecodeChannel
	count  atomic.Int32
	raw    atomic.Int32
	closed atomic.Bool
}

func (c *countingDecoder) Decode(ctx context.Context, req domain.DecodeRequest) <-chan domain.DecodeResult {
	c.count.Add(1)
	if req.Raw {
		c.raw.Add(1)
	}
	return c.inner.Decode(ctx, req)
}

func (c *countingDecoder) Close() error {
	c.closed.Store(true)
	return c.inner.Close()
}

// decoderRecorder is a DecoderFactory that keeps the decoders it makes.
type decoderRecorder struct {
	mu       sync.Mutex
	decoders []*countingDecoder
}

func (r *decoderRecorder) factory() driving.DecoderFactory {
	return func() driving.DecodeChannel {
		d := &countingDecoder{inner: NewDecodeWorker()}
		r.mu.Lock()
		r.decoders = append(r.decoders, d)
		r.mu.Unlock()
		return d
	}
}

func (r *decoderRecorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.decoders {
		n += int(d.count.Load())
	}
	return n
}

// failingDecoder answers every request with err.
type failingDecoder struct {
	err error
}

func (f *failingDecoder) Decode(_ context.Context, _ domain.DecodeRequest) <-chan domain.DecodeResult {
	out := make(chan domain.DecodeResult, 1)
	out <- domain.DecodeResult{Err: f.err}
	return out
}

func (f *failingDecoder) Close() error { return nil }

// mockTreeProvider returns a fixed listing.
type mockTreeProvider struct {
	tree  *domain.RepoTree
	err   error
	calls int
}

var _ driven.TreeProvider = (*mockTreeProvider)(nil)

func (m *mockTreeProvider) ListTree(_ context.Context, repo domain.RepoRef) (*domain.RepoTree, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	tree := *m.tree
	if tree.Repo.IsZero() {
		tree.Repo = repo
	}
	return &tree, nil
}

// mockBlobCache is an in-test BlobCache.
type mockBlobCache struct {
	mu      sync.Mutex
	entries map[string]string
	getErr  error
	putErr  error
	puts    int
}

var _ driven.BlobCache = (*mockBlobCache)(nil)

func newMockBlobCache() *mockBlobCache {
	return &mockBlobCache{entries: make(map[string]string)}
}

func (m *mockBlobCache) Get(_ context.Context, url string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	payload, ok := m.entries[url]
	if !ok {
		return "", domain.ErrNotFound
	}
	return payload, nil
}

func (m *mockBlobCache) Put(_ context.Context, url, payload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.entries[url] = payload
	return nil
}

func (m *mockBlobCache) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, url)
	return nil
}

func (m *mockBlobCache) Stats(_ context.Context) (int, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var size int64
	for _, p := range m.entries {
		size += int64(len(p))
	}
	return len(m.entries), size, nil
}

func (m *mockBlobCache) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]string)
	return nil
}

func encodeBytes(data []byte) string {
	return Base64EncodeUnicode(string(data))
}
