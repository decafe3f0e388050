package assets

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"imageingest/internal/imageproc"
	"imageingest/internal/models"
)

type subjects map[int64]string

func (s subjects) CanonicalPath(_ context.Context, id int64) (string, error) {
	p, ok := s[id]
	if !ok {
		return "", models.ErrSubjectNotFound
	}
	return p, nil
}

func newTestLayout(t *testing.T) *Layout {
	t.Helper()
	l, err := NewLayout(t.TempDir(), "uploads/staging", "")
	if err != nil {
		t.Fatalf("NewLayout: %v", err)
	}
	return l
}

// fixedAllocator returns an allocator whose stems are deterministic.
func fixedAllocator(l *Layout, sec int64, rnd []byte) *Allocator {
	a := NewAllocator(l)
	a.now = func() time.Time { return time.Unix(sec, 0) }
	a.random = bytes.NewReader(rnd)
	return a
}

func fakeDerivatives() imageproc.Derivatives {
	return imageproc.Derivatives{
		{Variant: imageproc.VariantMain, Format: imageproc.FormatPNG, Width: 1200, Height: 600, Data: []byte("main-bytes")},
		{Variant: imageproc.VariantThumb, Format: imageproc.FormatPNG, Width: 150, Height: 150, Data: []byte("thumb")},
		{Variant: imageproc.VariantCard, Format: imageproc.FormatPNG, Width: 300, Height: 200, Data: []byte("card")},
	}
}

func stage(t *testing.T, l *Layout, uploader string) []StagedFile {
	t.Helper()
	files, err := NewAllocator(l).Stage(uploader, fakeDerivatives(), KeepPartial)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	return files
}

func mustExist(t *testing.T, l *Layout, rel string) {
	t.Helper()
	if _, err := os.Stat(filepath.Join(l.PublicRoot(), filepath.FromSlash(rel))); err != nil {
		t.Fatalf("%s: %v", rel, err)
	}
}

func mustNotExist(t *testing.T, l *Layout, rel string) {
	t.Helper()
	if _, err := os.Stat(filepath.Join(l.PublicRoot(), filepath.FromSlash(rel))); !os.IsNotExist(err) {
		t.Fatalf("%s still exists (err=%v)", rel, err)
	}
}

// regularFiles lists every regular file below root.
func regularFiles(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	return out
}
