package assets

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"testing"

	"imageingest/internal/imageproc"
	"imageingest/internal/models"
)

var people = subjects{
	1: "https://example.org/people/jane-doe/",
	2: "https://example.org/",
	3: "/people/john-roe",
}

func TestPromote(t *testing.T) {
	l := newTestLayout(t)
	files := stage(t, l, "u1")
	name := path.Base(files[0].Path)

	p, err := NewPromoter(l, people).Promote(context.Background(), files[0].Path, 1)
	if err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if want := "people/jane-doe/" + name; p.ProductionPath != want {
		t.Fatalf("production path %q, want %q", p.ProductionPath, want)
	}
	if !p.Complete() {
		t.Fatalf("promotion incomplete: %+v", p.Derivatives)
	}
	for _, prefix := range []string{"", "thumb_", "card_"} {
		mustExist(t, l, "people/jane-doe/"+prefix+name)
		mustNotExist(t, l, "uploads/staging/u1/"+prefix+name)
	}
}

func TestPromoteMissingDerivative(t *testing.T) {
	l := newTestLayout(t)
	files := stage(t, l, "u1")
	card := filepath.Join(l.PublicRoot(), filepath.FromSlash(files[2].Path))
	if err := os.Remove(card); err != nil {
		t.Fatal(err)
	}

	p, err := NewPromoter(l, people).Promote(context.Background(), files[0].Path, 3)
	if err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if p.Complete() {
		t.Fatal("expected incomplete promotion")
	}
	got := map[string]string{}
	for _, d := range p.Derivatives {
		got[d.Variant] = d.Status
	}
	if got["thumb"] != models.OutcomeMoved || got["card"] != models.OutcomeMissing {
		t.Fatalf("outcomes %v", got)
	}
	mustExist(t, l, p.ProductionPath)
}

func TestPromoteFailedDerivativeKeepsMain(t *testing.T) {
	l := newTestLayout(t)
	files := stage(t, l, "u1")
	name := path.Base(files[0].Path)

	// A non-empty directory at the thumb destination blocks that move only.
	blocker := filepath.Join(l.PublicRoot(), "people", "jane-doe", "thumb_"+name, "x")
	if err := os.MkdirAll(blocker, 0o755); err != nil {
		t.Fatal(err)
	}

	p, err := NewPromoter(l, people).Promote(context.Background(), files[0].Path, 1)
	if err != nil {
		t.Fatalf("Promote: %v", err)
	}
	mustExist(t, l, p.ProductionPath)
	for _, d := range p.Derivatives {
		switch d.Variant {
		case "thumb":
			if !d.Failed() || d.Error == "" || d.Path != files[1].Path {
				t.Errorf("thumb outcome %+v", d)
			}
		case "card":
			if d.Status != models.OutcomeMoved {
				t.Errorf("card outcome %+v", d)
			}
		}
	}
	mustExist(t, l, files[1].Path)
}

func TestPromoteNotFound(t *testing.T) {
	l := newTestLayout(t)
	files := stage(t, l, "u1")
	pr := NewPromoter(l, people)

	tests := []struct {
		name    string
		path    string
		subject int64
	}{
		{"unknown subject", files[0].Path, 99},
		{"no canonical path", files[0].Path, 2},
		{"missing staged file", "uploads/staging/u1/nope.png", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pr.Promote(context.Background(), tt.path, tt.subject)
			if !imageproc.IsKind(err, imageproc.KindNotFound) {
				t.Fatalf("expected not found, got %v", err)
			}
		})
	}
	mustExist(t, l, files[0].Path)
}

func TestCanonicalSegment(t *testing.T) {
	tests := map[string]string{
		"https://example.org/people/jane-doe/": "people/jane-doe",
		"http://example.org/a/b":               "a/b",
		"/people/john-roe":                     "people/john-roe",
		"people/x/":                            "people/x",
		"https://example.org/":                 "",
		"https://example.org/../../etc":        "etc",
		"":                                     "",
	}
	for in, want := range tests {
		if got := CanonicalSegment(in); got != want {
			t.Errorf("CanonicalSegment(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPromoteRejectsAbsolutePathOutsideRoot(t *testing.T) {
	l := newTestLayout(t)
	outside := filepath.Join(t.TempDir(), "1700000000_deadbeef.png")
	if err := os.WriteFile(outside, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewPromoter(l, people).Promote(context.Background(), outside, 1)
	if !imageproc.IsKind(err, imageproc.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := os.Stat(outside); err != nil {
		t.Fatalf("outside file moved: %v", err)
	}
}
