package imageproc

import (
	"image"
	"image/color"
	"testing"
)

func TestFitSize(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{2000, 1000, 1200, 1200, 600},
		{1000, 2000, 1200, 600, 1200},
		{3000, 1999, 1200, 1200, 800},
		{1201, 1201, 1200, 1200, 1200},
		{10000, 1, 1200, 1200, 1},
		{1, 10000, 1200, 1, 1200},
		{800, 600, 1200, 800, 600},
		{1200, 1200, 1200, 1200, 1200},
		{640, 480, 0, 640, 480},
	}
	for _, tt := range tests {
		w, h := FitSize(tt.w, tt.h, tt.max)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("FitSize(%d, %d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.max, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestFit(t *testing.T) {
	small := gradient(40, 20)
	out, resized := Fit(small, 100)
	if resized || out != image.Image(small) {
		t.Fatal("image within bounds must be returned unchanged")
	}

	big := gradient(400, 100)
	out, resized = Fit(big, 100)
	if !resized {
		t.Fatal("expected resize")
	}
	if w, h := dims(out); w != 100 || h != 25 {
		t.Fatalf("got %dx%d, want 100x25", w, h)
	}
}

func TestCropRect(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		tw, th int
		want   image.Rectangle
	}{
		{"landscape thumb", 2000, 1000, 150, 150, image.Rect(500, 0, 1500, 1000)},
		{"landscape card", 2000, 1000, 300, 200, image.Rect(250, 0, 1750, 1000)},
		{"panorama thumb", 400, 100, 150, 150, image.Rect(150, 0, 250, 100)},
		{"portrait card", 1000, 2000, 300, 200, image.Rect(0, 666, 1000, 1333)},
		{"portrait thumb", 100, 400, 150, 150, image.Rect(0, 150, 100, 250)},
		{"exact ratio", 600, 400, 300, 200, image.Rect(0, 0, 600, 400)},
		{"single pixel", 1, 1, 300, 200, image.Rect(0, 0, 1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CropRect(tt.w, tt.h, tt.tw, tt.th)
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFillExactSize(t *testing.T) {
	sources := [][2]int{{2000, 1000}, {1000, 2000}, {1, 1}, {5000, 3}, {3, 5000}, {150, 150}, {90, 60}}
	for _, s := range sources {
		src := gradient(s[0], s[1])
		for _, v := range []Variant{VariantThumb, VariantCard} {
			tw, th, _ := v.Size()
			if w, h := dims(Fill(src, tw, th)); w != tw || h != th {
				t.Errorf("%dx%d %s: got %dx%d", s[0], s[1], v, w, h)
			}
		}
	}
}

func TestFillKeepsCenter(t *testing.T) {
	// Wide source: blue outer thirds, red middle third. A square crop keeps
	// only the middle.
	src := image.NewNRGBA(image.Rect(0, 0, 300, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 300; x++ {
			c := blue
			if x >= 100 && x < 200 {
				c = red
			}
			src.SetNRGBA(x, y, c)
		}
	}
	before := append([]uint8(nil), src.Pix...)

	out := Fill(src, 150, 150)
	for _, p := range []image.Point{{2, 2}, {75, 75}, {147, 147}} {
		if !isRedish(out.At(p.X, p.Y)) {
			t.Errorf("pixel %v is %v, want red", p, out.At(p.X, p.Y))
		}
	}
	for i := range before {
		if src.Pix[i] != before[i] {
			t.Fatal("Fill mutated its source")
		}
	}
}

func TestFillOffsetBounds(t *testing.T) {
	// SubImage keeps the parent's coordinates; the crop must follow them.
	parent := image.NewNRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			c := color.NRGBA{B: 255, A: 255}
			if x >= 100 {
				c = red
			}
			parent.SetNRGBA(x, y, c)
		}
	}
	sub := parent.SubImage(image.Rect(100, 0, 200, 100))
	out := Fill(sub, 50, 50)
	if !isRedish(out.At(25, 25)) {
		t.Fatalf("crop ignored sub-image origin: %v", out.At(25, 25))
	}
}

func TestVariantNaming(t *testing.T) {
	if VariantMain.Prefix() != "" || VariantThumb.Prefix() != "thumb_" || VariantCard.Prefix() != "card_" {
		t.Fatal("unexpected variant prefixes")
	}
	if _, _, ok := VariantMain.Size(); ok {
		t.Fatal("main must not have a fixed size")
	}
}
