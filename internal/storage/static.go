package storage

import (
	"context"
	"strings"

	"imageingest/internal/models"
)

// Static is an in-memory person directory keyed by subject id.
type Static map[int64]string

func (s Static) CanonicalPath(_ context.Context, subjectID int64) (string, error) {
	p, ok := s[subjectID]
	if !ok || strings.TrimSpace(p) == "" {
		return "", models.ErrSubjectNotFound
	}
	return p, nil
}
