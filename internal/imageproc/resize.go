package imageproc

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Variant is one of the three derivatives produced for every upload.
type Variant int

const (
	VariantMain Variant = iota
	VariantThumb
	VariantCard
)

// Default derivative geometry.
const (
	DefaultMaxDimension = 1200
	ThumbWidth          = 150
	ThumbHeight         = 150
	CardWidth           = 300
	CardHeight          = 200
)

// Variants lists the derivatives in the order they are produced.
var Variants = []Variant{VariantMain, VariantThumb, VariantCard}

func (v Variant) String() string {
	switch v {
	case VariantMain:
		return "main"
	case VariantThumb:
		return "thumb"
	case VariantCard:
		return "card"
	default:
		return "unknown"
	}
}

// Prefix is the filename prefix linking a derivative to its main file.
func (v Variant) Prefix() string {
	switch v {
	case VariantThumb:
		return "thumb_"
	case VariantCard:
		return "card_"
	default:
		return ""
	}
}

// Size returns the exact target size of a cropped variant. Main has no fixed
// size and reports ok=false.
func (v Variant) Size() (w, h int, ok bool) {
	switch v {
	case VariantThumb:
		return ThumbWidth, ThumbHeight, true
	case VariantCard:
		return CardWidth, CardHeight, true
	default:
		return 0, 0, false
	}
}

// Fit shrinks img so its longer side equals maxDim. When img already fits it
// is returned as is with resized=false; the caller then shares the buffer
// with the source and must not mutate it.
func Fit(img image.Image, maxDim int) (out image.Image, resized bool) {
	b := img.Bounds()
	w, h := FitSize(b.Dx(), b.Dy(), maxDim)
	if w == b.Dx() && h == b.Dy() {
		return img, false
	}
	return imaging.Resize(img, w, h, imaging.Lanczos), true
}

// FitSize computes the dimensions Fit produces for a w x h source.
func FitSize(w, h, maxDim int) (int, int) {
	if maxDim <= 0 || w <= 0 || h <= 0 {
		return w, h
	}
	if w <= maxDim && h <= maxDim {
		return w, h
	}
	if w >= h {
		ratio := float64(maxDim) / float64(w)
		return maxDim, atLeastOne(int(math.Round(float64(h) * ratio)))
	}
	ratio := float64(maxDim) / float64(h)
	return atLeastOne(int(math.Round(float64(w) * ratio))), maxDim
}

// CropRect returns the centered region of a w x h source that has the aspect
// ratio of tw x th.
func CropRect(w, h, tw, th int) image.Rectangle {
	sourceRatio := float64(w) / float64(h)
	targetRatio := float64(tw) / float64(th)

	if sourceRatio > targetRatio {
		cropW := clamp(int(math.Round(float64(h)*targetRatio)), 1, w)
		x := (w - cropW) / 2
		return image.Rect(x, 0, x+cropW, h)
	}
	cropH := clamp(int(math.Round(float64(w)/targetRatio)), 1, h)
	y := (h - cropH) / 2
	return image.Rect(0, y, w, y+cropH)
}

// Fill crops the centered tw:th region of img and resamples it to exactly
// tw x th. img is left untouched.
func Fill(img image.Image, tw, th int) *image.NRGBA {
	b := img.Bounds()
	r := CropRect(b.Dx(), b.Dy(), tw, th).Add(b.Min)
	cropped := imaging.Crop(img, r)
	return imaging.Resize(cropped, tw, th, imaging.Lanczos)
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
