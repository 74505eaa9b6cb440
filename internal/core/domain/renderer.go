package domain

// RendererKind identifies the renderer that presents a document.
type RendererKind string

// Available renderer kinds.
const (
	KindLoading        RendererKind = "loading"
	KindTooLarge       RendererKind = "too_large"
	KindFailed         RendererKind = "failed"
	KindUnsupported    RendererKind = "unsupported"
	KindImage          RendererKind = "image"
	KindPDF            RendererKind = "pdf"
	KindVideo          RendererKind = "video"
	KindAudio          RendererKind = "audio"
	KindStructuredText RendererKind = "structured_text"
	KindMarkup         RendererKind = "markup"
	KindTabular        RendererKind = "tabular"
	KindNotebook       RendererKind = "notebook"
	KindLayeredImage   RendererKind = "layered_image"
	KindCode           RendererKind = "code"
)

// RequiresText reports whether the renderer needs decoded text.
// Status kinds need no content at all.
func (k RendererKind) RequiresText() bool {
	switch k {
	case KindStructuredText, KindMarkup, KindTabular, KindNotebook, KindCode:
		return true
	default:
		return false
	}
}

// IsBinary reports whether the renderer works from the raw payload.
func (k RendererKind) IsBinary() bool {
	switch k {
	case KindImage, KindPDF, KindVideo, KindAudio, KindLayeredImage:
		return true
	default:
		return false
	}
}

// IsStatus reports whether the kind is a placeholder rather than content.
func (k RendererKind) IsStatus() bool {
	switch k {
	case KindLoading, KindTooLarge, KindFailed, KindUnsupported:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k RendererKind) String() string {
	return string(k)
}
