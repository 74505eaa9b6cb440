package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/webp" // WebP decoder
)

// asciiRamp orders characters from dark to light.
var asciiRamp = []rune(" .:-=+*#%@")

// svgRasterSize is the longest side an SVG is rasterised at before preview.
const svgRasterSize = 256

// ImageRenderer previews raster and SVG images as ASCII art.
type ImageRenderer struct {
	// MaxHeight caps the preview height in rows. Zero means 40.
	MaxHeight int
}

// NewImageRenderer creates an image renderer.
func NewImageRenderer() *ImageRenderer {
	return &ImageRenderer{MaxHeight: 40}
}

// Render implements Renderer.
func (r *ImageRenderer) Render(props Props) (string, error) {
	data, err := decodePayload(props.Content)
	if err != nil {
		return "", err
	}

	var img image.Image
	var format string
	if props.Type.Type == "svg" {
		img, err = rasterizeSVG(data)
		format = "svg"
	} else {
		img, format, err = image.Decode(bytes.NewReader(data))
	}

	if err != nil {
		return summary(props, "preview unavailable: "+err.Error()), nil
	}

	b := img.Bounds()
	head := summary(props, fmt.Sprintf("%s %d × %d", strings.ToUpper(format), b.Dx(), b.Dy()))
	preview := r.ascii(img, props.contentWidth())
	if preview == "" {
		return head, nil
	}
	return head + "\n\n" + preview, nil
}

// ImageSize reports the pixel dimensions and format of an encoded image
// without decoding the pixels.
func ImageSize(data []byte) (width, height int, format string, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", err
	}
	return cfg.Width, cfg.Height, format, nil
}

// ascii downsamples img to fit width and maps perceptual lightness to
// characters. Terminal cells are about twice as tall as wide.
func (r *ImageRenderer) ascii(img image.Image, width int) string {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return ""
	}

	maxHeight := r.MaxHeight
	if maxHeight <= 0 {
		maxHeight = 40
	}

	outW := min(max(16, width-2), b.Dx())
	outH := max(1, outW*b.Dy()/b.Dx()/2)
	if outH > maxHeight {
		outH = maxHeight
		outW = max(1, outH*2*b.Dx()/b.Dy())
	}

	small := resize.Resize(uint(outW), uint(outH), img, resize.Bilinear)
	sb := small.Bounds()

	var out strings.Builder
	for y := sb.Min.Y; y < sb.Max.Y; y++ {
		for x := sb.Min.X; x < sb.Max.X; x++ {
			out.WriteRune(rampChar(small.At(x, y)))
		}
		if y < sb.Max.Y-1 {
			out.WriteByte('\n')
		}
	}
	return out.String()
}

// rampChar picks a character for a pixel. Transparent pixels are blank.
func rampChar(c color.Color) rune {
	col, ok := colorful.MakeColor(c)
	if !ok {
		return asciiRamp[0]
	}
	l, _, _ := col.Lab()
	idx := int(math.Round(l * float64(len(asciiRamp)-1)))
	idx = max(0, min(idx, len(asciiRamp)-1))
	return asciiRamp[idx]
}

// rasterizeSVG draws an SVG into an RGBA image at most svgRasterSize wide.
func rasterizeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parsing svg: %w", err)
	}

	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		w, h = svgRasterSize, svgRasterSize
	}
	scale := svgRasterSize / max(w, h)
	iw, ih := max(1, int(w*scale)), max(1, int(h*scale))

	icon.SetTarget(0, 0, float64(iw), float64(ih))
	rgba := image.NewRGBA(image.Rect(0, 0, iw, ih))
	scanner := rasterx.NewScannerGV(iw, ih, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(iw, ih, scanner), 1)
	return rgba, nil
}
