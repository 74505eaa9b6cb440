package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/ports/driven"
	"github.com/custodia-labs/reposcope/internal/core/ports/driving"
)

func newTestSession(t *testing.T, fetcher driven.FileFetcher) *SessionService {
	t.Helper()
	s := NewSessionService(NewContentLoader(fetcher, nil, 0))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func file(path string, size int64) domain.FileDescriptor {
	return domain.FileDescriptor{Path: path, Name: domain.BaseName(path), URL: "u/" + path, Size: size}
}

func awaitDoc(t *testing.T, s *SessionService, path string) domain.Document {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	doc, err := s.Await(ctx, path)
	require.NoError(t, err)
	return doc
}

func paths(docs []domain.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Path
	}
	return out
}

func TestSessionService_OpenMarkdown(t *testing.T) {
	fetcher := newMockFetcher().withText("u/a.md", "# Hello")
	s := newTestSession(t, fetcher)

	require.NoError(t, s.OpenFile(file("a.md", 7)))

	doc, ok := s.Active()
	require.True(t, ok)
	assert.Equal(t, "a.md", doc.Path)
	assert.Equal(t, "a.md", doc.Title)
	assert.NotEmpty(t, doc.LoadID)

	doc = awaitDoc(t, s, "a.md")
	assert.Equal(t, domain.PhaseReady, doc.Phase)
	assert.True(t, doc.CanRenderAsText)
	assert.Equal(t, "# Hello", doc.Content)
	assert.Equal(t, domain.KindStructuredText, NewDispatcher().RendererFor(doc))
}

func TestSessionService_OpenStartsInLoading(t *testing.T) {
	fetcher := newScriptedFetcher()
	s := newTestSession(t, fetcher)

	require.NoError(t, s.OpenFile(file("main.go", 10)))
	doc, ok := s.Document("main.go")
	require.True(t, ok)
	assert.Equal(t, domain.PhaseLoading, doc.Phase)
	assert.Equal(t, domain.KindLoading, NewDispatcher().RendererFor(doc))

	(<-fetcher.calls).respond("package main")
	doc = awaitDoc(t, s, "main.go")
	assert.Equal(t, domain.PhaseReady, doc.Phase)
}

func TestSessionService_OpenImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	fetcher := newMockFetcher().withBytes("u/logo.png", png)
	rec := &decoderRecorder{}
	s := NewSessionService(NewContentLoader(fetcher, rec.factory(), 0))
	defer s.Close()

	require.NoError(t, s.OpenFile(file("logo.png", 8)))
	doc := awaitDoc(t, s, "logo.png")

	assert.Equal(t, domain.PhaseReady, doc.Phase)
	assert.False(t, doc.CanRenderAsText)
	assert.Equal(t, encodeBytes(png), doc.Content)
	assert.Equal(t, domain.KindImage, NewDispatcher().RendererFor(doc))
	assert.Equal(t, 0, rec.total(), "images are never text-decoded")
}

func TestSessionService_OpenUndecodable(t *testing.T) {
	fetcher := newMockFetcher().withBytes("u/data.bin", []byte{0x00, 0xFF, 0x10, 0x80})
	s := newTestSession(t, fetcher)

	require.NoError(t, s.OpenFile(file("data.bin", 4)))
	doc := awaitDoc(t, s, "data.bin")

	assert.Equal(t, domain.PhaseUnsupported, doc.Phase)
	assert.False(t, doc.CanRenderAsText)
	assert.True(t, doc.CanOverride())
	assert.Equal(t, domain.KindUnsupported, NewDispatcher().RendererFor(doc))
}

func TestSessionService_OpenTooLarge(t *testing.T) {
	fetcher := newMockFetcher()
	s := newTestSession(t, fetcher)

	require.NoError(t, s.OpenFile(file("huge.log", 31_000_000)))
	doc := awaitDoc(t, s, "huge.log")

	assert.Equal(t, domain.PhaseTooLarge, doc.Phase)
	assert.Equal(t, domain.KindTooLarge, NewDispatcher().RendererFor(doc))
	assert.Equal(t, 0, fetcher.callCount())
}

func TestSessionService_OpenDuplicateFocuses(t *testing.T) {
	fetcher := newMockFetcher().withText("u/a.go", "a").withText("u/b.go", "b")
	s := newTestSession(t, fetcher)

	require.NoError(t, s.OpenFile(file("a.go", 1)))
	require.NoError(t, s.OpenFile(file("b.go", 1)))
	assert.Equal(t, 1, s.ActiveIndex())

	require.NoError(t, s.OpenFile(file("a.go", 1)))
	s.Wait()

	assert.Equal(t, []string{"a.go", "b.go"}, paths(s.Documents()))
	assert.Equal(t, 0, s.ActiveIndex())
	assert.Equal(t, 2, fetcher.callCount(), "focusing does not refetch")
}

func TestSessionService_OpenEmptyPath(t *testing.T) {
	s := newTestSession(t, newMockFetcher())
	err := s.OpenFile(domain.FileDescriptor{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSessionService_CloseTabRepairsActive(t *testing.T) {
	tests := []struct {
		name       string
		active     int
		close      int
		wantPaths  []string
		wantActive int
	}{
		{"close active middle selects left", 2, 2, []string{"a", "b", "d"}, 1},
		{"close active first stays at zero", 0, 0, []string{"b", "c", "d"}, 0},
		{"close active last selects left", 3, 3, []string{"a", "b", "c"}, 2},
		{"close left of active shifts", 2, 0, []string{"b", "c", "d"}, 1},
		{"close right of active keeps", 1, 3, []string{"a", "b", "c"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := newMockFetcher()
			for _, p := range []string{"a", "b", "c", "d"} {
				fetcher.withText("u/"+p, p)
			}
			s := newTestSession(t, fetcher)
			for _, p := range []string{"a", "b", "c", "d"} {
				require.NoError(t, s.OpenFile(file(p, 1)))
			}
			require.NoError(t, s.SetActive(tt.active))
			before, _ := s.Active()

			require.NoError(t, s.CloseTab(tt.close))

			assert.Equal(t, tt.wantPaths, paths(s.Documents()))
			assert.Equal(t, tt.wantActive, s.ActiveIndex())
			if tt.close != tt.active {
				after, _ := s.Active()
				assert.Equal(t, before.Path, after.Path, "selection follows the document")
			}
		})
	}
}

func TestSessionService_CloseLastTab(t *testing.T) {
	s := newTestSession(t, newMockFetcher().withText("u/only.txt", "x"))
	require.NoError(t, s.OpenFile(file("only.txt", 1)))
	require.NoError(t, s.CloseTab(0))

	assert.Empty(t, s.Documents())
	assert.Equal(t, 0, s.ActiveIndex())
	_, ok := s.Active()
	assert.False(t, ok)
}

func TestSessionService_CloseTabOutOfRange(t *testing.T) {
	s := newTestSession(t, newMockFetcher())
	assert.ErrorIs(t, s.CloseTab(0), domain.ErrInvalidInput)
	assert.ErrorIs(t, s.CloseTab(-1), domain.ErrInvalidInput)
	assert.ErrorIs(t, s.SetActive(3), domain.ErrInvalidInput)
}

func TestSessionService_CloseBeforeFetchResolves(t *testing.T) {
	fetcher := newScriptedFetcher()
	s := newTestSession(t, fetcher)

	require.NoError(t, s.OpenFile(file("x.js", 10)))
	pending := <-fetcher.calls
	require.NoError(t, s.CloseTab(0))

	pending.respond("console.log(1)")
	s.Wait()

	assert.Empty(t, s.Documents())
	_, ok := s.Document("x.js")
	assert.False(t, ok)
}

func TestSessionService_ReopenIgnoresStaleCompletion(t *testing.T) {
	fetcher := newScriptedFetcher()
	s := newTestSession(t, fetcher)

	require.NoError(t, s.OpenFile(file("x.js", 10)))
	first := <-fetcher.calls
	require.NoError(t, s.CloseTab(0))

	require.NoError(t, s.OpenFile(file("x.js", 10)))
	second := <-fetcher.calls

	second.respond("fresh")
	doc := awaitDoc(t, s, "x.js")
	assert.Equal(t, "fresh", doc.Content)

	first.fail(errors.New("stale failure"))
	s.Wait()

	doc, ok := s.Document("x.js")
	require.True(t, ok)
	assert.Equal(t, domain.PhaseReady, doc.Phase)
	assert.Equal(t, "fresh", doc.Content)
	assert.NoError(t, doc.Err)
}

func TestSessionService_CloseAll(t *testing.T) {
	fetcher := newScriptedFetcher()
	s := newTestSession(t, fetcher)

	require.NoError(t, s.OpenFile(file("a.go", 1)))
	require.NoError(t, s.OpenFile(file("b.go", 1)))
	a, b := <-fetcher.calls, <-fetcher.calls

	s.CloseAll()
	assert.Empty(t, s.Documents())
	assert.Equal(t, 0, s.ActiveIndex())

	a.respond("a")
	b.respond("b")
	s.Wait()
	assert.Empty(t, s.Documents())
}

func TestSessionService_FetchFailureIsolated(t *testing.T) {
	fetcher := newMockFetcher().
		withError("u/broken.go", errors.New("502 bad gateway")).
		withText("u/ok.go", "package ok")
	s := newTestSession(t, fetcher)

	require.NoError(t, s.OpenFile(file("broken.go", 5)))
	require.NoError(t, s.OpenFile(file("ok.go", 5)))

	broken := awaitDoc(t, s, "broken.go")
	ok := awaitDoc(t, s, "ok.go")

	assert.Equal(t, domain.PhaseFailed, broken.Phase)
	assert.ErrorIs(t, broken.Err, domain.ErrFetchFailed)
	assert.Equal(t, domain.KindFailed, NewDispatcher().RendererFor(broken))
	assert.Equal(t, domain.PhaseReady, ok.Phase)
}

func TestSessionService_Retry(t *testing.T) {
	fetcher := newMockFetcher().withError("u/flaky.go", errors.New("timeout"))
	s := newTestSession(t, fetcher)

	require.NoError(t, s.OpenFile(file("flaky.go", 5)))
	doc := awaitDoc(t, s, "flaky.go")
	require.Equal(t, domain.PhaseFailed, doc.Phase)
	firstID := doc.LoadID

	fetcher.mu.Lock()
	delete(fetcher.errs, "u/flaky.go")
	fetcher.mu.Unlock()
	fetcher.withText("u/flaky.go", "package flaky")

	require.NoError(t, s.Retry("flaky.go"))
	doc = awaitDoc(t, s, "flaky.go")
	assert.Equal(t, domain.PhaseReady, doc.Phase)
	assert.Equal(t, "package flaky", doc.Content)
	assert.NotEqual(t, firstID, doc.LoadID)
}

func TestSessionService_RetryRequiresFailure(t *testing.T) {
	s := newTestSession(t, newMockFetcher().withText("u/a.go", "a"))
	require.NoError(t, s.OpenFile(file("a.go", 1)))
	awaitDoc(t, s, "a.go")

	assert.ErrorIs(t, s.Retry("a.go"), domain.ErrInvalidInput)
	assert.ErrorIs(t, s.Retry("missing.go"), domain.ErrNotFound)
}

func TestSessionService_ForceRenderActive(t *testing.T) {
	s := newTestSession(t, newMockFetcher().withBytes("u/data.bin", []byte{0xFF}))
	require.NoError(t, s.OpenFile(file("data.bin", 1)))
	awaitDoc(t, s, "data.bin")

	_, err := s.BeginForceRender("data.bin")
	require.NoError(t, err)
	doc, _ := s.Document("data.bin")
	assert.Equal(t, domain.PhaseForceRendering, doc.Phase)

	assert.True(t, s.ForceRender("data.bin", "ÿ"))
	doc, _ = s.Document("data.bin")
	assert.Equal(t, domain.PhaseReady, doc.Phase)
	assert.True(t, doc.Forced)
	assert.True(t, doc.CanRenderAsText)
	assert.Equal(t, "ÿ", doc.Content)
	assert.Equal(t, domain.KindCode, NewDispatcher().RendererFor(doc))
}

func TestSessionService_ForceRenderInactiveIsDiscarded(t *testing.T) {
	fetcher := newMockFetcher().withBytes("u/data.bin", []byte{0xFF}).withText("u/b.go", "b")
	s := newTestSession(t, fetcher)

	require.NoError(t, s.OpenFile(file("data.bin", 1)))
	awaitDoc(t, s, "data.bin")
	_, err := s.BeginForceRender("data.bin")
	require.NoError(t, err)

	require.NoError(t, s.OpenFile(file("b.go", 1)))
	assert.False(t, s.ForceRender("data.bin", "ÿ"))

	doc, _ := s.Document("data.bin")
	assert.Equal(t, domain.PhaseUnsupported, doc.Phase)
	assert.False(t, doc.Forced)
}

func TestSessionService_ForceRenderClosedDocument(t *testing.T) {
	s := newTestSession(t, newMockFetcher().withBytes("u/data.bin", []byte{0xFF}))
	require.NoError(t, s.OpenFile(file("data.bin", 1)))
	awaitDoc(t, s, "data.bin")
	require.NoError(t, s.CloseTab(0))

	assert.False(t, s.ForceRender("data.bin", "text"))
	assert.Empty(t, s.Documents())
}

func TestSessionService_ForceRenderWhileLoadingIgnored(t *testing.T) {
	fetcher := newScriptedFetcher()
	s := newTestSession(t, fetcher)

	require.NoError(t, s.OpenFile(file("a.go", 1)))
	pending := <-fetcher.calls

	assert.False(t, s.ForceRender("a.go", "early"))
	_, err := s.BeginForceRender("a.go")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	pending.respond("late")
	doc := awaitDoc(t, s, "a.go")
	assert.Equal(t, "late", doc.Content)
	assert.False(t, doc.Forced)
}

func TestSessionService_FailForceRenderRestoresPhase(t *testing.T) {
	s := newTestSession(t, newMockFetcher().withBytes("u/data.bin", []byte{0xFF}))
	require.NoError(t, s.OpenFile(file("data.bin", 1)))
	awaitDoc(t, s, "data.bin")

	_, err := s.BeginForceRender("data.bin")
	require.NoError(t, err)
	s.FailForceRender("data.bin", errors.New("boom"))

	doc, _ := s.Document("data.bin")
	assert.Equal(t, domain.PhaseUnsupported, doc.Phase)
	assert.ErrorIs(t, doc.Err, domain.ErrForcedDecodeFailed)
	assert.True(t, doc.CanOverride(), "a failed override can be retried")
}

func TestSessionService_AwaitClosedDocument(t *testing.T) {
	fetcher := newScriptedFetcher()
	s := newTestSession(t, fetcher)

	require.NoError(t, s.OpenFile(file("a.go", 1)))
	pending := <-fetcher.calls

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Await(context.Background(), "a.go")
		errCh <- err
	}()

	require.NoError(t, s.CloseTab(0))
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, domain.ErrNotFound)
	case <-time.After(5 * time.Second):
		t.Fatal("Await did not return after close")
	}
	pending.respond("a")
}

func TestSessionService_AwaitContextCancelled(t *testing.T) {
	fetcher := newScriptedFetcher()
	s := newTestSession(t, fetcher)

	require.NoError(t, s.OpenFile(file("a.go", 1)))
	pending := <-fetcher.calls

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Await(ctx, "a.go")
	assert.ErrorIs(t, err, context.Canceled)
	pending.respond("a")
}

func TestSessionService_Events(t *testing.T) {
	fetcher := newScriptedFetcher()
	s := newTestSession(t, fetcher)

	require.NoError(t, s.OpenFile(file("a.go", 1)))
	(<-fetcher.calls).respond("a")
	s.Wait()
	require.NoError(t, s.CloseTab(0))

	var got []driving.EventType
	for len(got) < 3 {
		select {
		case ev := <-s.Events():
			got = append(got, ev.Type)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for events, got %v", got)
		}
	}
	assert.Equal(t, []driving.EventType{driving.EventOpened, driving.EventLoaded, driving.EventClosed}, got)
}

func TestSessionService_Close(t *testing.T) {
	rec := &decoderRecorder{}
	s := NewSessionService(NewContentLoader(newScriptedFetcher(), rec.factory(), 0))

	require.NoError(t, s.OpenFile(file("a.go", 1)))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.OpenFile(file("b.go", 1)), domain.ErrSessionClosed)
	assert.True(t, rec.decoders[0].closed.Load())

	for range s.Events() {
	}
}

func TestSessionService_ActiveIndexAlwaysInRange(t *testing.T) {
	fetcher := newMockFetcher()
	names := make([]string, 8)
	for i := range names {
		names[i] = fmt.Sprintf("f%d.txt", i)
		fetcher.withText("u/"+names[i], names[i])
	}
	s := newTestSession(t, fetcher)
	rng := rand.New(rand.NewSource(42))

	for step := 0; step < 500; step++ {
		n := len(s.Documents())
		switch op := rng.Intn(4); {
		case op == 0 || n == 0:
			require.NoError(t, s.OpenFile(file(names[rng.Intn(len(names))], 1)))
		case op == 1:
			require.NoError(t, s.CloseTab(rng.Intn(n)))
		case op == 2:
			require.NoError(t, s.SetActive(rng.Intn(n)))
		default:
			if rng.Intn(10) == 0 {
				s.CloseAll()
			}
		}

		docs := s.Documents()
		active := s.ActiveIndex()
		if len(docs) == 0 {
			assert.Equal(t, 0, active)
			continue
		}
		require.GreaterOrEqual(t, active, 0)
		require.Less(t, active, len(docs))

		seen := make(map[string]bool)
		for _, d := range docs {
			require.False(t, seen[d.Path], "duplicate tab for %s", d.Path)
			seen[d.Path] = true
		}
	}
	s.Wait()
}
