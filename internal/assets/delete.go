package assets

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"imageingest/internal/imageproc"
	"imageingest/internal/models"
)

// Deleter removes asset groups from staging or production.
type Deleter struct {
	layout *Layout
}

func NewDeleter(layout *Layout) *Deleter {
	return &Deleter{layout: layout}
}

// Delete removes the main file at p and its thumb_/card_ siblings, then the
// containing directory if that left it empty. It never fails: a missing main
// file is a no-op and every other problem is reported per file.
func (d *Deleter) Delete(p string) models.Deletion {
	res := models.Deletion{Path: p}

	abs, err := d.layout.Resolve(p)
	if err != nil || !fileExists(abs) {
		return res
	}
	res.Existed = true

	for _, v := range imageproc.Variants {
		target := abs
		if v != imageproc.VariantMain {
			target = SiblingPath(abs, v)
		}
		res.Files = append(res.Files, d.remove(target, v))
	}

	dir := filepath.Dir(abs)
	if !d.layout.protected(dir) {
		if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
			res.DirRemoved = os.Remove(dir) == nil
		}
	}
	return res
}

func (d *Deleter) remove(path string, v imageproc.Variant) models.FileOutcome {
	out := models.FileOutcome{Variant: v.String(), Path: d.layout.Rel(path)}
	err := os.Remove(path)
	switch {
	case err == nil:
		out.Status = models.OutcomeRemoved
	case errors.Is(err, fs.ErrNotExist):
		out.Status = models.OutcomeMissing
	default:
		out.Status = models.OutcomeFailed
		out.Error = err.Error()
	}
	return out
}
