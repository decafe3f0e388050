package assets

import (
	"os"
	"path/filepath"

	"imageingest/internal/imageproc"
)

// StagedFile is one derivative written to staging.
type StagedFile struct {
	Variant imageproc.Variant
	Name    string
	Path    string // web-relative
	Size    int64
	Width   int
	Height  int
}

// PartialPolicy decides what happens to already written files when a later
// write of the same group fails.
type PartialPolicy int

const (
	// KeepPartial leaves written files in place for external cleanup.
	KeepPartial PartialPolicy = iota
	// RemovePartial deletes written files before returning the error.
	RemovePartial
)

// Stage writes every derivative into the uploader's staging directory under
// one freshly allocated stem. On error the returned slice lists the files
// that are still on disk.
func (a *Allocator) Stage(uploaderID string, ds imageproc.Derivatives, policy PartialPolicy) ([]StagedFile, error) {
	const op = "assets.Stage"

	if len(ds) == 0 {
		return nil, nil
	}
	dir, err := a.StagingDir(uploaderID)
	if err != nil {
		return nil, err
	}
	names, err := a.NewNames(ds[0].Format)
	if err != nil {
		return nil, imageproc.IOError(op, err)
	}

	written := make([]StagedFile, 0, len(ds))
	for _, d := range ds {
		name := names.File(d.Variant)
		abs := filepath.Join(dir, name)
		if err := WriteFile(abs, d.Data); err != nil {
			if policy == RemovePartial {
				for _, f := range written {
					if p, rerr := a.layout.Resolve(f.Path); rerr == nil {
						os.Remove(p)
					}
				}
				written = nil
			}
			return written, imageproc.IOError(op, err)
		}
		written = append(written, StagedFile{
			Variant: d.Variant,
			Name:    name,
			Path:    a.layout.Rel(abs),
			Size:    int64(len(d.Data)),
			Width:   d.Width,
			Height:  d.Height,
		})
	}
	return written, nil
}
