package assets

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"imageingest/internal/imageproc"
)

// Names is the shared filename stem of one asset group.
type Names struct {
	Stem string
	Ext  string
}

func (n Names) File(v imageproc.Variant) string {
	return v.Prefix() + n.Stem + "." + n.Ext
}

// Allocator hands out filename stems and staging directories. Stems combine
// the current second with 32 random bits; two uploads by the same uploader
// in the same second collide with probability 2^-32. No lock guards this.
type Allocator struct {
	layout *Layout
	now    func() time.Time
	random io.Reader
}

func NewAllocator(layout *Layout) *Allocator {
	return &Allocator{layout: layout, now: time.Now, random: rand.Reader}
}

// NewStem returns "<unix seconds>_<8 hex chars>".
func (a *Allocator) NewStem() (string, error) {
	var b [4]byte
	if _, err := io.ReadFull(a.random, b[:]); err != nil {
		return "", fmt.Errorf("assets.NewStem: %w", err)
	}
	return fmt.Sprintf("%d_%s", a.now().Unix(), hex.EncodeToString(b[:])), nil
}

func (a *Allocator) NewNames(f imageproc.Format) (Names, error) {
	stem, err := a.NewStem()
	if err != nil {
		return Names{}, err
	}
	return Names{Stem: stem, Ext: f.Ext()}, nil
}

// StagingDir creates (if needed) and returns the uploader's staging
// directory. The uploader id is trusted but must be a single path element.
func (a *Allocator) StagingDir(uploaderID string) (string, error) {
	const op = "assets.StagingDir"

	if !validSegment(uploaderID) {
		return "", imageproc.ValidationError(op, "invalid uploader id")
	}
	dir := filepath.Join(a.layout.StagingRoot(), uploaderID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", imageproc.IOError(op, err)
	}
	return dir, nil
}

func validSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, `/\`+"\x00")
}
