// Package assets owns the on-disk lifecycle of generated images: naming and
// writing into staging, promotion into production, and deletion.
package assets

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"imageingest/internal/imageproc"
)

// Layout maps web-relative paths (slash separated, relative to the public
// root) to the filesystem. Staging and production directories live under
// the public root.
type Layout struct {
	publicRoot    string
	stagingDir    string
	productionDir string
}

// NewLayout builds a Layout. stagingDir and productionDir are relative to
// publicRoot; productionDir may be empty to place promoted files directly
// under their canonical segment.
func NewLayout(publicRoot, stagingDir, productionDir string) (*Layout, error) {
	const op = "assets.NewLayout"

	if publicRoot == "" {
		return nil, fmt.Errorf("%s: public root is required", op)
	}
	abs, err := filepath.Abs(publicRoot)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	staging := cleanRel(stagingDir)
	if staging == "" {
		return nil, fmt.Errorf("%s: staging dir is required", op)
	}
	return &Layout{
		publicRoot:    abs,
		stagingDir:    staging,
		productionDir: cleanRel(productionDir),
	}, nil
}

func (l *Layout) PublicRoot() string { return l.publicRoot }

func (l *Layout) StagingRoot() string {
	return filepath.Join(l.publicRoot, filepath.FromSlash(l.stagingDir))
}

func (l *Layout) ProductionRoot() string {
	return filepath.Join(l.publicRoot, filepath.FromSlash(l.productionDir))
}

// Resolve turns a web-relative path, or an absolute path inside the public
// root, into an absolute filesystem path. Absolute paths elsewhere are
// rejected, never re-rooted.
func (l *Layout) Resolve(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("empty path")
	}
	var abs string
	if filepath.IsAbs(p) {
		abs = filepath.Clean(p)
	} else {
		rel := cleanRel(filepath.ToSlash(p))
		if rel == "" {
			return "", fmt.Errorf("path %q resolves to the public root", p)
		}
		abs = filepath.Join(l.publicRoot, filepath.FromSlash(rel))
	}
	if !l.contains(abs) || abs == l.publicRoot {
		return "", fmt.Errorf("path %q is outside the public root", p)
	}
	return abs, nil
}

// Rel converts an absolute path inside the public root to its web-relative form.
func (l *Layout) Rel(abs string) string {
	rel, err := filepath.Rel(l.publicRoot, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

// protected reports whether dir is one of the configured roots, which are
// never removed by cleanup.
func (l *Layout) protected(dir string) bool {
	dir = filepath.Clean(dir)
	return dir == l.publicRoot || dir == l.StagingRoot() || dir == l.ProductionRoot() || !l.contains(dir)
}

func (l *Layout) contains(p string) bool {
	rel, err := filepath.Rel(l.publicRoot, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

// cleanRel normalizes a slash path and strips leading and trailing slashes.
// ".." elements cannot climb above the root.
func cleanRel(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	c := path.Clean("/" + filepath.ToSlash(p))
	return strings.Trim(c, "/")
}

// SiblingPath returns the path of variant v next to the main file at mainPath.
func SiblingPath(mainPath string, v imageproc.Variant) string {
	return filepath.Join(filepath.Dir(mainPath), v.Prefix()+filepath.Base(mainPath))
}
