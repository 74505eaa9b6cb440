package render

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
)

// ErrBadPayload is returned when a binary payload is not valid base64.
var ErrBadPayload = errors.New("render: payload is not valid base64")

// decodePayload turns the host's base64 payload into bytes. Line breaks
// inside the payload are ignored.
func decodePayload(payload string) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, payload)

	data, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(clean, "="))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return data, nil
}

// summary renders the one-line header shared by binary renderers.
func summary(props Props, detail string) string {
	parts := []string{props.Title}
	if props.Type.DisplayName != "" {
		parts = append(parts, props.Type.DisplayName)
	}
	if detail != "" {
		parts = append(parts, detail)
	}
	if props.Size > 0 {
		parts = append(parts, humanize.Bytes(uint64(props.Size)))
	}
	return strings.Join(parts, " · ")
}

// overrideHint closes binary views that have no inline preview.
const overrideHint = "No inline preview. Press o to view the raw bytes as text."

var (
	pdfVersion = regexp.MustCompile(`^%PDF-(\d+\.\d+)`)
	pdfPage    = regexp.MustCompile(`/Type\s*/Page[^s]`)
	pdfTitle   = regexp.MustCompile(`/Title\s*\(([^)]*)\)`)
)

// PDFRenderer summarises a PDF: version, page count and title.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDF renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render implements Renderer.
func (r *PDFRenderer) Render(props Props) (string, error) {
	data, err := decodePayload(props.Content)
	if err != nil {
		return "", err
	}

	m := pdfVersion.FindSubmatch(data)
	if m == nil {
		return summary(props, "not a PDF file") + "\n\n" + overrideHint, nil
	}

	details := []string{"PDF " + string(m[1])}
	if pages := len(pdfPage.FindAllIndex(data, -1)); pages > 0 {
		details = append(details, fmt.Sprintf("%d pages", pages))
	}

	out := summary(props, strings.Join(details, ", "))
	if t := pdfTitle.FindSubmatch(data); t != nil && len(bytes.TrimSpace(t[1])) > 0 {
		out += "\nTitle: " + string(t[1])
	}
	return out + "\n\n" + overrideHint, nil
}

// psdHeader is the fixed 26-byte header of a Photoshop document.
type psdHeader struct {
	Signature [4]byte
	Version   uint16
	Reserved  [6]byte
	Channels  uint16
	Height    uint32
	Width     uint32
	Depth     uint16
	ColorMode uint16
}

var psdColorModes = map[uint16]string{
	0: "bitmap", 1: "grayscale", 2: "indexed", 3: "RGB",
	4: "CMYK", 7: "multichannel", 8: "duotone", 9: "Lab",
}

// LayeredImageRenderer summarises Photoshop documents from their header.
type LayeredImageRenderer struct{}

// NewLayeredImageRenderer creates a layered image renderer.
func NewLayeredImageRenderer() *LayeredImageRenderer {
	return &LayeredImageRenderer{}
}

// Render implements Renderer.
func (r *LayeredImageRenderer) Render(props Props) (string, error) {
	data, err := decodePayload(props.Content)
	if err != nil {
		return "", err
	}

	var h psdHeader
	if err := binary.Read(bytes.NewReader(data), binary.BigEndian, &h); err != nil || string(h.Signature[:]) != "8BPS" {
		return summary(props, "unrecognised header") + "\n\n" + overrideHint, nil
	}

	mode, ok := psdColorModes[h.ColorMode]
	if !ok {
		mode = fmt.Sprintf("mode %d", h.ColorMode)
	}
	kind := "PSD"
	if h.Version == 2 {
		kind = "PSB"
	}
	detail := fmt.Sprintf("%s %d × %d, %d channels, %d-bit %s",
		kind, h.Width, h.Height, h.Channels, h.Depth, mode)
	return summary(props, detail) + "\n\n" + overrideHint, nil
}

// MediaRenderer summarises audio and video files by container signature.
type MediaRenderer struct {
	medium string
}

// NewMediaRenderer creates a renderer for "audio" or "video".
func NewMediaRenderer(medium string) *MediaRenderer {
	return &MediaRenderer{medium: medium}
}

// Render implements Renderer.
func (r *MediaRenderer) Render(props Props) (string, error) {
	data, err := decodePayload(props.Content)
	if err != nil {
		return "", err
	}

	detail := r.medium
	if c := sniffContainer(data); c != "" {
		detail = c + " " + r.medium
	}
	return summary(props, detail) + "\n\n" +
		"Playback is not available in the terminal. Press o to view the raw bytes as text.", nil
}

// sniffContainer identifies common media containers from magic bytes.
func sniffContainer(data []byte) string {
	switch {
	case len(data) >= 12 && string(data[4:8]) == "ftyp":
		return "MPEG-4"
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return "WAVE"
	case len(data) >= 4 && string(data[0:4]) == "OggS":
		return "Ogg"
	case len(data) >= 4 && string(data[0:4]) == "fLaC":
		return "FLAC"
	case len(data) >= 4 && bytes.Equal(data[0:4], []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return "Matroska/WebM"
	case len(data) >= 3 && string(data[0:3]) == "ID3":
		return "MP3"
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return "MPEG audio"
	}
	return ""
}
