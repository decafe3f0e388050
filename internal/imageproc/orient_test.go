package imageproc

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

// marked returns a w x h blue image whose top-left box x box square is red.
func marked(w, h, box int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := blue
			if x < box && y < box {
				c = red
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func isRedish(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r>>8 > 200 && g>>8 < 60 && b>>8 < 60
}

func TestApply(t *testing.T) {
	const w, h = 3, 2
	tests := []struct {
		o     Orientation
		wantX int
		wantY int
		wantW int
		wantH int
	}{
		{OrientationUnspecified, 0, 0, w, h},
		{OrientationNormal, 0, 0, w, h},
		{OrientationFlipH, w - 1, 0, w, h},
		{OrientationRotate180, w - 1, h - 1, w, h},
		{OrientationFlipV, 0, h - 1, w, h},
		{OrientationTranspose, 0, 0, h, w},
		{OrientationRotate270, h - 1, 0, h, w},
		{OrientationTransverse, h - 1, w - 1, h, w},
		{OrientationRotate90, 0, w - 1, h, w},
		{Orientation(42), 0, 0, w, h},
	}
	for _, tt := range tests {
		src := marked(w, h, 1)
		out := tt.o.Apply(src)
		gw, gh := dims(out)
		if gw != tt.wantW || gh != tt.wantH {
			t.Errorf("orientation %d: got %dx%d, want %dx%d", tt.o, gw, gh, tt.wantW, tt.wantH)
			continue
		}
		if tt.o.SwapsAxes() != (gw != w) {
			t.Errorf("orientation %d: SwapsAxes=%v disagrees with result", tt.o, tt.o.SwapsAxes())
		}
		b := out.Bounds()
		if !isRedish(out.At(b.Min.X+tt.wantX, b.Min.Y+tt.wantY)) {
			t.Errorf("orientation %d: marker not at (%d,%d)", tt.o, tt.wantX, tt.wantY)
		}
	}
}

func TestOrientRotatesSidewaysJPEG(t *testing.T) {
	upright := marked(32, 64, 16)
	// Stored rotated a quarter turn counter-clockwise; tag 6 asks for a
	// quarter turn clockwise on display.
	stored := encodeJPEG(t, imaging.Rotate90(upright))

	tagged := withOrientation(t, stored, 6)
	if o := ReadOrientation(tagged); o != OrientationRotate270 {
		t.Fatalf("ReadOrientation = %d, want 6", o)
	}

	img, err := Decode(tagged, FormatJPEG)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out := Orient(tagged, FormatJPEG, img)
	if w, h := dims(out); w != 32 || h != 64 {
		t.Fatalf("got %dx%d, want 32x64", w, h)
	}
	b := out.Bounds()
	if !isRedish(out.At(b.Min.X+4, b.Min.Y+4)) {
		t.Fatal("top-left of corrected image is not the red marker")
	}

	normal := withOrientation(t, stored, 1)
	img, err = Decode(normal, FormatJPEG)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if w, h := dims(Orient(normal, FormatJPEG, img)); w != 64 || h != 32 {
		t.Fatalf("tag 1 changed geometry: %dx%d", w, h)
	}
}

func TestReadOrientationWithoutMetadata(t *testing.T) {
	if o := ReadOrientation(encodeJPEG(t, gradient(8, 8))); o != OrientationUnspecified {
		t.Fatalf("got %d", o)
	}
	if o := ReadOrientation([]byte("garbage")); o != OrientationUnspecified {
		t.Fatalf("got %d", o)
	}
}

func TestOrientIgnoresNonJPEG(t *testing.T) {
	src := gradient(8, 4)
	for _, f := range []Format{FormatPNG, FormatWebP} {
		if out := Orient(encodeAs(t, src, f), f, src); out != image.Image(src) {
			t.Errorf("%s: image was transformed", f)
		}
	}
}
