package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	"golang.org/x/image/draw"
)

// Encoder settings per output format.
const (
	JPEGQuality = 85
	WebPQuality = 80
	// PNGCompressionLevel is zlib level 6, which Go exposes as the default level.
	PNGCompressionLevel = png.DefaultCompression
)

// Encode writes img to w in format f. Metadata of the source never reaches
// the output since only pixels are serialized.
func Encode(w io.Writer, img image.Image, f Format) error {
	const op = "imageproc.Encode"

	if f.HasAlpha() {
		img = alphaCanvas(img)
	}

	var err error
	switch f {
	case FormatJPEG:
		err = imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality))
	case FormatPNG:
		err = imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(PNGCompressionLevel))
	case FormatWebP:
		var opts *encoder.Options
		opts, err = encoder.NewLossyEncoderOptions(encoder.PresetDefault, WebPQuality)
		if err == nil {
			err = webp.Encode(w, img, opts)
		}
	default:
		err = fmt.Errorf("no encoder for %s", f)
	}
	if err != nil {
		return IOError(op, err)
	}
	return nil
}

func EncodeBytes(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// alphaCanvas composites img onto a transparent NRGBA canvas. The canvas is
// cleared with blending off so its alpha stays zero, then img is drawn with
// blending on. Swapping these steps fringes semi-transparent edges.
func alphaCanvas(img image.Image) *image.NRGBA {
	b := img.Bounds()
	canvas := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), image.Transparent, image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), img, b.Min, draw.Over)
	return canvas
}
