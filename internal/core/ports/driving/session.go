package driving

import (
	"context"

	"github.com/custodia-labs/reposcope/internal/core/domain"
)

// EventType classifies a session change notification.
type EventType string

// Session event types.
const (
	EventOpened        EventType = "opened"
	EventFocused       EventType = "focused"
	EventLoaded        EventType = "loaded"
	EventClosed        EventType = "closed"
	EventCleared       EventType = "cleared"
	EventChanged       EventType = "changed"
	EventForceRendered EventType = "force_rendered"
	EventForceFailed   EventType = "force_failed"
)

// SessionEvent signals that session state changed.
// Consumers re-read state rather than trusting the event payload.
type SessionEvent struct {
	Type EventType
	Path string
}

// SessionService owns the open documents and the active selection.
type SessionService interface {
	// OpenFile focuses the document for desc if it is open, otherwise opens
	// it in the loading phase, makes it active and starts loading it.
	OpenFile(desc domain.FileDescriptor) error

	// CloseTab removes the document at index and repairs the active index.
	CloseTab(index int) error

	// CloseAll removes every document. In-flight loads are not cancelled.
	CloseAll()

	// SetActive selects the document at index.
	SetActive(index int) error

	// BeginForceRender moves the document at path into the force-rendering
	// phase and returns a snapshot holding the payload to decode.
	BeginForceRender(path string) (domain.Document, error)

	// ForceRender commits forcibly decoded text. It applies only if path is
	// still the active document and reports whether it did.
	ForceRender(path, text string) bool

	// FailForceRender restores the committed phase after a failed override.
	FailForceRender(path string, err error)

	// Retry reloads a document whose fetch failed.
	Retry(path string) error

	// Documents returns a snapshot of all open documents in tab order.
	Documents() []domain.Document

	// ActiveIndex returns the active index, 0 when empty.
	ActiveIndex() int

	// Active returns the active document, if any.
	Active() (domain.Document, bool)

	// Document returns the open document at path, if any.
	Document(path string) (domain.Document, bool)

	// Await blocks until the current load for path settles.
	Await(ctx context.Context, path string) (domain.Document, error)

	// Events returns the change notification channel.
	Events() <-chan SessionEvent

	// Close waits for in-flight loads and releases the session's resources.
	Close() error
}
