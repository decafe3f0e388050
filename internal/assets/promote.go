package assets

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"imageingest/internal/imageproc"
	"imageingest/internal/models"
)

// SubjectLookup resolves a subject to its canonical path, e.g.
// "https://example.org/people/jane-doe/". Unknown subjects and subjects
// without a path return models.ErrSubjectNotFound.
type SubjectLookup interface {
	CanonicalPath(ctx context.Context, subjectID int64) (string, error)
}

// Promoter moves staged asset groups into production.
type Promoter struct {
	layout   *Layout
	subjects SubjectLookup
}

func NewPromoter(layout *Layout, subjects SubjectLookup) *Promoter {
	return &Promoter{layout: layout, subjects: subjects}
}

// Promote moves the main file first and then, independently, each
// derivative. A derivative that fails to move does not undo the main move;
// its outcome is reported in the returned Promotion.
func (p *Promoter) Promote(ctx context.Context, stagedPath string, subjectID int64) (*models.Promotion, error) {
	const op = "assets.Promote"

	canonical, err := p.subjects.CanonicalPath(ctx, subjectID)
	if err != nil {
		if errors.Is(err, models.ErrSubjectNotFound) {
			return nil, imageproc.NotFoundError(op, fmt.Sprintf("subject %d not found", subjectID))
		}
		return nil, imageproc.IOError(op, err)
	}
	segment := CanonicalSegment(canonical)
	if segment == "" {
		return nil, imageproc.NotFoundError(op, fmt.Sprintf("subject %d has no canonical path", subjectID))
	}

	targetDir := filepath.Join(p.layout.ProductionRoot(), filepath.FromSlash(segment))
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, imageproc.IOError(op, err)
	}

	src, err := p.layout.Resolve(stagedPath)
	if err != nil || !fileExists(src) {
		return nil, imageproc.NotFoundError(op, fmt.Sprintf("staged file %s not found", stagedPath))
	}

	name := filepath.Base(src)
	dst := filepath.Join(targetDir, name)
	if err := moveFile(src, dst); err != nil {
		return nil, imageproc.IOError(op, err)
	}

	promotion := &models.Promotion{ProductionPath: p.layout.Rel(dst)}
	for _, v := range imageproc.Variants[1:] {
		promotion.Derivatives = append(promotion.Derivatives, p.moveSibling(src, targetDir, v))
	}
	return promotion, nil
}

func (p *Promoter) moveSibling(mainSrc, targetDir string, v imageproc.Variant) models.FileOutcome {
	src := SiblingPath(mainSrc, v)
	dst := filepath.Join(targetDir, filepath.Base(src))
	out := models.FileOutcome{Variant: v.String(), Path: p.layout.Rel(dst)}

	if !fileExists(src) {
		out.Path = p.layout.Rel(src)
		out.Status = models.OutcomeMissing
		return out
	}
	if err := moveFile(src, dst); err != nil {
		out.Path = p.layout.Rel(src)
		out.Status = models.OutcomeFailed
		out.Error = err.Error()
		return out
	}
	out.Status = models.OutcomeMoved
	return out
}

// CanonicalSegment strips scheme and host from a canonical path and returns
// the remaining slash path without leading or trailing slashes.
func CanonicalSegment(canonical string) string {
	canonical = strings.TrimSpace(canonical)
	if canonical == "" {
		return ""
	}
	p := canonical
	if u, err := url.Parse(canonical); err == nil && (u.Scheme != "" || u.Host != "") {
		p = u.Path
	}
	return cleanRel(p)
}
