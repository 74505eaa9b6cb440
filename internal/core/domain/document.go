package domain

import "time"

// DefaultMaxFileSize is the size at or above which content is never fetched.
const DefaultMaxFileSize int64 = 30_000_000

// FileDescriptor identifies a file selected from a repository tree.
// Path is the unique key; URL is an opaque handle understood by the fetcher.
type FileDescriptor struct {
	Path string
	Name string
	URL  string
	Size int64
}

// Phase is the load/render state of a document.
type Phase int

const (
	// PhaseLoading means a fetch or decode is in flight.
	PhaseLoading Phase = iota
	// PhaseTooLarge means the file exceeded the size limit and was never fetched.
	PhaseTooLarge
	// PhaseUnsupported means text decoding failed and no binary renderer applies.
	PhaseUnsupported
	// PhaseReady means content is available; see Document.CanRenderAsText.
	PhaseReady
	// PhaseForceRendering means a manual override decode is in flight.
	PhaseForceRendering
	// PhaseFailed means the fetch failed; the document can be retried.
	PhaseFailed
)

// String returns the string representation.
func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseTooLarge:
		return "too_large"
	case PhaseUnsupported:
		return "unsupported"
	case PhaseReady:
		return "ready"
	case PhaseForceRendering:
		return "force_rendering"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsSettled reports whether no work is in flight for the document.
func (p Phase) IsSettled() bool {
	return p != PhaseLoading && p != PhaseForceRendering
}

// Document is one open tab.
// Callers always receive copies; the session owns the canonical state.
type Document struct {
	// Path is the identity of the document. Immutable.
	Path string

	// Title is the display name shown on the tab.
	Title string

	// URL and Size are copied from the descriptor.
	URL  string
	Size int64

	// Type is detected from Title when the document is created.
	Type FileType

	// Phase is the current load/render state.
	Phase Phase

	// Content holds the raw base64 payload, or decoded text when
	// CanRenderAsText is true. Meaningless while loading.
	Content string

	// CanRenderAsText is true once Content holds decoded text.
	CanRenderAsText bool

	// Forced is true once a manual override committed. Never reverts.
	Forced bool

	// Err is the last fetch failure or the last forced decode failure.
	Err error

	// LoadID identifies the load attempt whose completion is accepted.
	LoadID string

	// OpenedAt is when the tab was created.
	OpenedAt time.Time
}

// NewDocument creates a loading document for a descriptor.
func NewDocument(desc FileDescriptor, loadID string) Document {
	title := desc.Name
	if title == "" {
		title = BaseName(desc.Path)
	}
	return Document{
		Path:     desc.Path,
		Title:    title,
		URL:      desc.URL,
		Size:     desc.Size,
		Type:     DetectFileType(title),
		Phase:    PhaseLoading,
		LoadID:   loadID,
		OpenedAt: time.Now(),
	}
}

// Descriptor returns the descriptor the document was opened from.
func (d Document) Descriptor() FileDescriptor {
	return FileDescriptor{Path: d.Path, Name: d.Title, URL: d.URL, Size: d.Size}
}

// HasText reports whether decoded text is available.
func (d Document) HasText() bool {
	return d.Phase == PhaseReady && d.CanRenderAsText
}

// CanOverride reports whether a manual "render as text" is allowed.
func (d Document) CanOverride() bool {
	if d.Forced {
		return false
	}
	return d.Phase == PhaseUnsupported || d.Phase == PhaseReady
}

// LoadResult is what a content loader produces for one descriptor.
type LoadResult struct {
	Phase           Phase
	Content         string
	CanRenderAsText bool
}

// DecodeRequest asks a decode worker to turn a base64 payload into text.
// Raw skips Unicode interpretation and maps each byte to one character.
type DecodeRequest struct {
	Payload string
	Raw     bool
}

// DecodeResult is the single reply to a DecodeRequest.
type DecodeResult struct {
	Text string
	Err  error
}
