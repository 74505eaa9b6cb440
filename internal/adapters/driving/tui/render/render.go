// Package render turns document content into terminal output.
//
// Each renderer handles one domain.RendererKind. Renderers are pure: they
// receive everything they need in Props and never touch session state.
// Text renderers receive decoded text; binary renderers receive the raw
// base64 payload.
package render

import (
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/reposcope/internal/core/domain"
)

// ErrNoRenderer is returned when no renderer is registered for a kind.
var ErrNoRenderer = errors.New("render: no renderer for kind")

// Props is the input to a renderer.
type Props struct {
	// Content is decoded text for text kinds, the base64 payload otherwise.
	Content string

	// Type is the detected file type.
	Type domain.FileType

	// Title is the file name shown on the tab.
	Title string

	// Size is the file size in bytes as reported by the host.
	Size int64

	// Width is the available width in cells.
	Width int

	// Theme selects the colour palette.
	Theme domain.Theme
}

// contentWidth returns Width, or a sane default when unset.
func (p Props) contentWidth() int {
	if p.Width <= 0 {
		return 80
	}
	return p.Width
}

// Renderer presents one kind of document.
type Renderer interface {
	Render(props Props) (string, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(props Props) (string, error)

// Render calls f(props).
func (f RendererFunc) Render(props Props) (string, error) {
	return f(props)
}

// Registry maps renderer kinds to renderers.
type Registry struct {
	mu        sync.RWMutex
	renderers map[domain.RendererKind]Renderer
}

// NewRegistry creates a registry holding the built-in content renderers.
// Status kinds (loading, too large, failed, unsupported) are drawn by the
// file view itself.
func NewRegistry() *Registry {
	r := &Registry{renderers: make(map[domain.RendererKind]Renderer)}
	r.Register(domain.KindCode, NewCodeRenderer())
	r.Register(domain.KindStructuredText, NewMarkdownRenderer())
	r.Register(domain.KindMarkup, NewMarkupRenderer())
	r.Register(domain.KindTabular, NewTableRenderer())
	r.Register(domain.KindNotebook, NewNotebookRenderer())
	r.Register(domain.KindImage, NewImageRenderer())
	r.Register(domain.KindLayeredImage, NewLayeredImageRenderer())
	r.Register(domain.KindPDF, NewPDFRenderer())
	r.Register(domain.KindVideo, NewMediaRenderer("video"))
	r.Register(domain.KindAudio, NewMediaRenderer("audio"))
	return r
}

// Register sets the renderer for kind, replacing any existing one.
func (r *Registry) Register(kind domain.RendererKind, renderer Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[kind] = renderer
}

// Lookup returns the renderer for kind.
func (r *Registry) Lookup(kind domain.RendererKind) (Renderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.renderers[kind]
	return renderer, ok
}

// Render renders props with the renderer registered for kind.
func (r *Registry) Render(kind domain.RendererKind, props Props) (string, error) {
	renderer, ok := r.Lookup(kind)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoRenderer, kind)
	}
	return renderer.Render(props)
}
