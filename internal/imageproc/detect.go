package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/webp"
)

// Format is the sniffed content type of an upload. Output derivatives are
// always encoded in the same format.
type Format int

const (
	FormatUnknown Format = iota
	FormatJPEG
	FormatPNG
	FormatWebP
)

// AllFormats is the full allow-list.
var AllFormats = []Format{FormatJPEG, FormatPNG, FormatWebP}

// MaxPixels bounds width*height accepted for decoding.
const MaxPixels = 64 << 20

func (f Format) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	case FormatPNG:
		return "png"
	case FormatWebP:
		return "webp"
	default:
		return "unknown"
	}
}

func (f Format) MIME() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatWebP:
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

func (f Format) Ext() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	case FormatPNG:
		return "png"
	case FormatWebP:
		return "webp"
	default:
		return "bin"
	}
}

// HasAlpha reports whether the format can carry transparency.
func (f Format) HasAlpha() bool { return f == FormatPNG || f == FormatWebP }

// ParseFormat maps a config name ("jpeg", "jpg", "png", "webp") to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpeg", "jpg", "image/jpeg":
		return FormatJPEG, nil
	case "png", "image/png":
		return FormatPNG, nil
	case "webp", "image/webp":
		return FormatWebP, nil
	default:
		return FormatUnknown, fmt.Errorf("unknown image format %q", s)
	}
}

// Detect sniffs the real content type of data. Only formats present in
// allowed succeed; an empty allowed list means AllFormats.
func Detect(data []byte, allowed []Format) (Format, error) {
	const op = "imageproc.Detect"

	mt := mimetype.Detect(data)
	var f Format
	switch {
	case mt.Is("image/jpeg"):
		f = FormatJPEG
	case mt.Is("image/png"):
		f = FormatPNG
	case mt.Is("image/webp"):
		f = FormatWebP
	default:
		return FormatUnknown, UnsupportedFormatError(op,
			fmt.Sprintf("unsupported file type %s: only JPEG, PNG and WebP images are accepted", mt.String()))
	}

	if len(allowed) == 0 {
		return f, nil
	}
	for _, a := range allowed {
		if a == f {
			return f, nil
		}
	}
	return FormatUnknown, UnsupportedFormatError(op, fmt.Sprintf("%s images are not accepted", f))
}

// Decode turns data into a pixel buffer using the decoder for f.
func Decode(data []byte, f Format) (image.Image, error) {
	const op = "imageproc.Decode"

	cfg, err := decodeConfig(data, f)
	if err != nil {
		return nil, DecodeError(op, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, DecodeError(op, fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height))
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, DecodeError(op, fmt.Errorf("image too large: %dx%d", cfg.Width, cfg.Height))
	}

	var img image.Image
	r := bytes.NewReader(data)
	switch f {
	case FormatJPEG:
		img, err = jpeg.Decode(r)
	case FormatPNG:
		img, err = png.Decode(r)
	case FormatWebP:
		img, err = webp.Decode(r)
	default:
		err = fmt.Errorf("no decoder for %s", f)
	}
	if err != nil {
		return nil, DecodeError(op, err)
	}
	return img, nil
}

func decodeConfig(data []byte, f Format) (image.Config, error) {
	r := bytes.NewReader(data)
	switch f {
	case FormatJPEG:
		return jpeg.DecodeConfig(r)
	case FormatPNG:
		return png.DecodeConfig(r)
	case FormatWebP:
		return webp.DecodeConfig(r)
	default:
		return image.Config{}, fmt.Errorf("no decoder for %s", f)
	}
}
