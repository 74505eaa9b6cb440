package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/ports/driving"
	"github.com/custodia-labs/reposcope/internal/logger"
)

// Ensure SessionService implements the interface.
var _ driving.SessionService = (*SessionService)(nil)

// eventBufferSize bounds undelivered change notifications.
const eventBufferSize = 64

// sessionEntry is the canonical state of one open document.
type sessionEntry struct {
	doc domain.Document

	// resume is the committed phase to restore when a forced decode is
	// abandoned or fails.
	resume domain.Phase

	// settled is closed when the load identified by doc.LoadID completes
	// or the document is closed.
	settled chan struct{}
	done    bool
}

func (e *sessionEntry) settle() {
	if !e.done {
		e.done = true
		close(e.settled)
	}
}

// SessionService manages open documents, the active selection and the
// asynchronous loads behind them.
//
// Loads run on their own goroutines. A completion is applied only if a
// document with the same path and load ID is still open; anything else is
// a stale completion and is dropped. Closing a tab never cancels its load.
type SessionService struct {
	loader driving.ContentLoader
	ctx    context.Context
	cancel context.CancelFunc
	newID  func() string

	mu      sync.Mutex
	entries []*sessionEntry
	open    map[string]struct{}
	active  int
	closed  bool
	wg      sync.WaitGroup

	eventsMu     sync.RWMutex
	events       chan driving.SessionEvent
	eventsClosed bool
}

// NewSessionService creates a session that loads content through loader.
// The session takes ownership of the loader and closes it on Close.
func NewSessionService(loader driving.ContentLoader) *SessionService {
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionService{
		loader: loader,
		ctx:    ctx,
		cancel: cancel,
		newID:  uuid.NewString,
		open:   make(map[string]struct{}),
		events: make(chan driving.SessionEvent, eventBufferSize),
	}
}

// OpenFile focuses desc if it is already open, otherwise opens and loads it.
func (s *SessionService) OpenFile(desc domain.FileDescriptor) error {
	if desc.Path == "" {
		return fmt.Errorf("%w: empty path", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}

	if _, ok := s.open[desc.Path]; ok {
		s.active = s.indexOf(desc.Path)
		s.mu.Unlock()
		logger.Debug("Focusing open document %s", desc.Path)
		s.notify(driving.EventFocused, desc.Path)
		return nil
	}

	e := &sessionEntry{
		doc:     domain.NewDocument(desc, s.newID()),
		settled: make(chan struct{}),
	}
	s.entries = append(s.entries, e)
	s.open[desc.Path] = struct{}{}
	s.active = len(s.entries) - 1
	s.startLoad(e.doc)
	s.mu.Unlock()

	logger.Debug("Opened %s (load %s)", desc.Path, e.doc.LoadID)
	s.notify(driving.EventOpened, desc.Path)
	return nil
}

// CloseTab removes the document at index.
// Closing the active tab selects its left neighbour; closing a tab left of
// the active one keeps the same document selected.
func (s *SessionService) CloseTab(index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.entries) {
		s.mu.Unlock()
		return fmt.Errorf("%w: tab index %d out of range", domain.ErrInvalidInput, index)
	}

	e := s.entries[index]
	s.entries = append(s.entries[:index], s.entries[index+1:]...)
	delete(s.open, e.doc.Path)
	e.settle()

	switch {
	case index == s.active:
		s.active = max(s.active-1, 0)
	case index < s.active:
		s.active--
	}
	if len(s.entries) == 0 {
		s.active = 0
	}
	s.mu.Unlock()

	s.notify(driving.EventClosed, e.doc.Path)
	return nil
}

// CloseAll removes every document. In-flight loads complete as no-ops.
func (s *SessionService) CloseAll() {
	s.mu.Lock()
	for _, e := range s.entries {
		e.settle()
	}
	s.entries = nil
	s.open = make(map[string]struct{})
	s.active = 0
	s.mu.Unlock()

	s.notify(driving.EventCleared, "")
}

// SetActive selects the document at index.
func (s *SessionService) SetActive(index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.entries) {
		s.mu.Unlock()
		return fmt.Errorf("%w: tab index %d out of range", domain.ErrInvalidInput, index)
	}
	s.active = index
	path := s.entries[index].doc.Path
	s.mu.Unlock()

	s.notify(driving.EventFocused, path)
	return nil
}

// BeginForceRender moves the document at path into PhaseForceRendering.
func (s *SessionService) BeginForceRender(path string) (domain.Document, error) {
	s.mu.Lock()
	e := s.find(path)
	if e == nil {
		s.mu.Unlock()
		return domain.Document{}, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	if !e.doc.CanOverride() {
		phase := e.doc.Phase
		s.mu.Unlock()
		return domain.Document{}, fmt.Errorf("%w: cannot render %s as text while %s", domain.ErrInvalidInput, path, phase)
	}

	e.resume = e.doc.Phase
	e.doc.Phase = domain.PhaseForceRendering
	e.doc.Err = nil
	snapshot := e.doc
	s.mu.Unlock()

	s.notify(driving.EventChanged, path)
	return snapshot, nil
}

// ForceRender commits forcibly decoded text for the active document.
// If path is open but no longer active, its pending override is abandoned.
// The result is permanent: later completions never revert it.
func (s *SessionService) ForceRender(path, text string) bool {
	s.mu.Lock()
	e := s.find(path)
	if e == nil {
		s.mu.Unlock()
		logger.Debug("Discarding forced render for closed document %s", path)
		return false
	}

	switch e.doc.Phase {
	case domain.PhaseLoading, domain.PhaseTooLarge, domain.PhaseFailed:
		s.mu.Unlock()
		return false
	}

	if s.entries[s.active] != e {
		if e.doc.Phase == domain.PhaseForceRendering {
			e.doc.Phase = e.resume
		}
		s.mu.Unlock()
		logger.Debug("Discarding forced render for inactive document %s", path)
		s.notify(driving.EventChanged, path)
		return false
	}

	e.doc.Phase = domain.PhaseReady
	e.doc.Content = text
	e.doc.CanRenderAsText = true
	e.doc.Forced = true
	e.doc.Err = nil
	s.mu.Unlock()

	s.notify(driving.EventForceRendered, path)
	return true
}

// FailForceRender restores the committed phase and records err.
func (s *SessionService) FailForceRender(path string, err error) {
	s.mu.Lock()
	e := s.find(path)
	if e == nil {
		s.mu.Unlock()
		return
	}
	if e.doc.Phase == domain.PhaseForceRendering {
		e.doc.Phase = e.resume
	}
	if err != nil && !errors.Is(err, domain.ErrForcedDecodeFailed) {
		err = fmt.Errorf("%w: %w", domain.ErrForcedDecodeFailed, err)
	}
	e.doc.Err = err
	s.mu.Unlock()

	s.notify(driving.EventForceFailed, path)
}

// Retry reloads a document whose fetch failed.
func (s *SessionService) Retry(path string) error {
	s.mu.Lock()
	e := s.find(path)
	if e == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	if e.doc.Phase != domain.PhaseFailed {
		phase := e.doc.Phase
		s.mu.Unlock()
		return fmt.Errorf("%w: %s is %s, not failed", domain.ErrInvalidInput, path, phase)
	}
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}

	e.doc.Phase = domain.PhaseLoading
	e.doc.Err = nil
	e.doc.LoadID = s.newID()
	e.settled = make(chan struct{})
	e.done = false
	s.startLoad(e.doc)
	s.mu.Unlock()

	logger.Debug("Retrying %s (load %s)", path, e.doc.LoadID)
	s.notify(driving.EventChanged, path)
	return nil
}

// Documents returns a snapshot of all documents in tab order.
func (s *SessionService) Documents() []domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]domain.Document, len(s.entries))
	for i, e := range s.entries {
		docs[i] = e.doc
	}
	return docs
}

// ActiveIndex returns the active index, 0 when no documents are open.
func (s *SessionService) ActiveIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Active returns the active document.
func (s *SessionService) Active() (domain.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return domain.Document{}, false
	}
	return s.entries[s.active].doc, true
}

// Document returns the open document at path.
func (s *SessionService) Document(path string) (domain.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.find(path); e != nil {
		return e.doc, true
	}
	return domain.Document{}, false
}

// Await blocks until the current load for path settles and returns the
// document as it is then. Returns domain.ErrNotFound if the document is
// closed first.
func (s *SessionService) Await(ctx context.Context, path string) (domain.Document, error) {
	s.mu.Lock()
	e := s.find(path)
	if e == nil {
		s.mu.Unlock()
		return domain.Document{}, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	settled := e.settled
	s.mu.Unlock()

	select {
	case <-settled:
	case <-ctx.Done():
		return domain.Document{}, ctx.Err()
	}

	doc, ok := s.Document(path)
	if !ok {
		return domain.Document{}, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	return doc, nil
}

// Events returns change notifications. Notifications are dropped when the
// buffer is full, so consumers re-read state on every event.
func (s *SessionService) Events() <-chan driving.SessionEvent {
	return s.events
}

// Wait blocks until every in-flight load has completed.
func (s *SessionService) Wait() {
	s.wg.Wait()
}

// Close stops accepting documents, cancels outstanding fetches, waits for
// their completions and releases the loader.
func (s *SessionService) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	err := s.loader.Close()

	s.eventsMu.Lock()
	s.eventsClosed = true
	close(s.events)
	s.eventsMu.Unlock()

	return err
}

// startLoad runs the loader for doc on a new goroutine.
// Caller must hold s.mu and have checked s.closed.
func (s *SessionService) startLoad(doc domain.Document) {
	desc := doc.Descriptor()
	loadID := doc.LoadID

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		result, err := s.loader.Load(s.ctx, desc)
		s.complete(desc.Path, loadID, result, err)
	}()
}

// complete applies a load result if its document is still open and the
// load is still current.
func (s *SessionService) complete(path, loadID string, result *domain.LoadResult, err error) {
	s.mu.Lock()
	e := s.find(path)
	if e == nil || e.doc.LoadID != loadID {
		s.mu.Unlock()
		logger.Debug("Discarding stale completion for %s (load %s)", path, loadID)
		return
	}

	switch {
	case err != nil:
		logger.Warn("Loading %s failed: %v", path, err)
		e.doc.Phase = domain.PhaseFailed
		e.doc.Err = err
		e.doc.Content = ""
	case result.Phase == domain.PhaseTooLarge:
		e.doc.Phase = domain.PhaseTooLarge
		e.doc.Content = ""
	default:
		e.doc.Content = result.Content
		e.doc.CanRenderAsText = result.CanRenderAsText
		e.doc.Phase = settledPhase(e.doc.Type, result.CanRenderAsText)
	}
	e.settle()
	s.mu.Unlock()

	s.notify(driving.EventLoaded, path)
}

// settledPhase decides between Ready and Unsupported after a load.
func settledPhase(fileType domain.FileType, canRenderAsText bool) domain.Phase {
	if !canRenderAsText && !fileType.Category.IsBinary() {
		return domain.PhaseUnsupported
	}
	return domain.PhaseReady
}

// find returns the entry for path. Caller must hold s.mu.
func (s *SessionService) find(path string) *sessionEntry {
	if _, ok := s.open[path]; !ok {
		return nil
	}
	for _, e := range s.entries {
		if e.doc.Path == path {
			return e
		}
	}
	return nil
}

// indexOf returns the tab index of path, or -1. Caller must hold s.mu.
func (s *SessionService) indexOf(path string) int {
	for i, e := range s.entries {
		if e.doc.Path == path {
			return i
		}
	}
	return -1
}

// notify sends a change notification without blocking.
func (s *SessionService) notify(typ driving.EventType, path string) {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	if s.eventsClosed {
		return
	}
	select {
	case s.events <- driving.SessionEvent{Type: typ, Path: path}:
	default:
	}
}
