package services

import (
	"sync"

	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/ports/driving"
)

// Ensure Dispatcher implements the interface.
var _ driving.RendererDispatcher = (*Dispatcher)(nil)

// defaultRenderers routes file categories to renderer kinds.
var defaultRenderers = map[domain.FileCategory]domain.RendererKind{
	domain.CategoryImage:        domain.KindImage,
	domain.CategoryPDF:          domain.KindPDF,
	domain.CategoryVideo:        domain.KindVideo,
	domain.CategoryAudio:        domain.KindAudio,
	domain.CategoryMarkdown:     domain.KindStructuredText,
	domain.CategoryMarkup:       domain.KindMarkup,
	domain.CategoryTabular:      domain.KindTabular,
	domain.CategoryNotebook:     domain.KindNotebook,
	domain.CategoryLayeredImage: domain.KindLayeredImage,
	domain.CategoryCode:         domain.KindCode,
	domain.CategoryPlainText:    domain.KindCode,
}

// Dispatcher selects renderers from an extensible routing table.
// Routes registered for a file type take precedence over category routes.
type Dispatcher struct {
	mu         sync.RWMutex
	byType     map[string]domain.RendererKind
	byCategory map[domain.FileCategory]domain.RendererKind
}

// NewDispatcher creates a dispatcher with the default routing table.
func NewDispatcher() *Dispatcher {
	byCategory := make(map[domain.FileCategory]domain.RendererKind, len(defaultRenderers))
	for c, k := range defaultRenderers {
		byCategory[c] = k
	}
	return &Dispatcher{
		byType:     make(map[string]domain.RendererKind),
		byCategory: byCategory,
	}
}

// Register routes a file type identifier (domain.FileType.Type) to kind.
func (d *Dispatcher) Register(fileType string, kind domain.RendererKind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byType[fileType] = kind
}

// SelectRenderer maps a detected type and text availability to a renderer.
//
// Unknown types render as code when text is available. Renderers that need
// text fall back to the unsupported view without it. Binary renderers are
// bypassed once text exists, which only happens after an override.
func (d *Dispatcher) SelectRenderer(fileType domain.FileType, canRenderAsText bool) domain.RendererKind {
	kind, ok := d.lookup(fileType)
	if !ok {
		if canRenderAsText {
			return domain.KindCode
		}
		return domain.KindUnsupported
	}

	switch {
	case kind.RequiresText() && !canRenderAsText:
		return domain.KindUnsupported
	case kind.IsBinary() && canRenderAsText:
		return domain.KindCode
	default:
		return kind
	}
}

// RendererFor maps a document's phase, then its content, to a renderer.
func (d *Dispatcher) RendererFor(doc domain.Document) domain.RendererKind {
	switch doc.Phase {
	case domain.PhaseLoading, domain.PhaseForceRendering:
		return domain.KindLoading
	case domain.PhaseTooLarge:
		return domain.KindTooLarge
	case domain.PhaseFailed:
		return domain.KindFailed
	case domain.PhaseUnsupported:
		return domain.KindUnsupported
	}

	if doc.Forced {
		return domain.KindCode
	}
	return d.SelectRenderer(doc.Type, doc.CanRenderAsText)
}

func (d *Dispatcher) lookup(fileType domain.FileType) (domain.RendererKind, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if kind, ok := d.byType[fileType.Type]; ok {
		return kind, true
	}
	kind, ok := d.byCategory[fileType.Category]
	return kind, ok
}
