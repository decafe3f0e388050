package models

import "errors"

// ErrSubjectNotFound is returned by subject lookups for unknown subjects or
// subjects without a canonical path.
var ErrSubjectNotFound = errors.New("subject not found")

// UploadResult describes a staged asset group. Paths are web-relative.
type UploadResult struct {
	FileName      string `json:"file_name"`
	FilePath      string `json:"file_path"`
	FileSizeBytes int64  `json:"file_size_bytes"`
	MIMEType      string `json:"mime_type"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	ThumbPath     string `json:"thumb_path"`
	CardPath      string `json:"card_path"`
}

// Outcome statuses of a single file operation.
const (
	OutcomeMoved   = "moved"
	OutcomeRemoved = "removed"
	OutcomeMissing = "missing"
	OutcomeFailed  = "failed"
)

// FileOutcome is the result of one step of a multi-file move or delete.
type FileOutcome struct {
	Variant string `json:"variant"`
	Path    string `json:"path"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

func (o FileOutcome) Failed() bool { return o.Status == OutcomeFailed }

// Promotion is the result of moving an asset group into production. The
// main file always moved when a Promotion is returned; derivatives are
// reported one by one.
type Promotion struct {
	ProductionPath string        `json:"production_path"`
	Derivatives    []FileOutcome `json:"derivatives"`
}

// Complete reports whether every derivative moved as well.
func (p *Promotion) Complete() bool {
	for _, d := range p.Derivatives {
		if d.Status != OutcomeMoved {
			return false
		}
	}
	return true
}

// Deletion is the result of removing an asset group.
type Deletion struct {
	Path       string        `json:"path"`
	Existed    bool          `json:"existed"`
	Files      []FileOutcome `json:"files,omitempty"`
	DirRemoved bool          `json:"dir_removed"`
}
