package ingest

import (
	"fmt"

	"imageingest/internal/assets"
	"imageingest/internal/imageproc"
	"imageingest/internal/models"
)

// NewLayout builds the filesystem layout described by cfg.
func NewLayout(cfg *models.Config) (*assets.Layout, error) {
	return assets.NewLayout(cfg.Storage.PublicRoot, cfg.Storage.StagingDir, cfg.Storage.ProductionDir)
}

// OptionsFromConfig maps the pipeline section of cfg onto Options. Publisher
// and Metrics are left for the caller.
func OptionsFromConfig(cfg *models.Config) (Options, error) {
	const op = "ingest.OptionsFromConfig"

	formats := make([]imageproc.Format, 0, len(cfg.Pipeline.AllowedFormats))
	for _, name := range cfg.Pipeline.AllowedFormats {
		f, err := imageproc.ParseFormat(name)
		if err != nil {
			return Options{}, fmt.Errorf("%s: %w", op, err)
		}
		formats = append(formats, f)
	}
	policy := assets.KeepPartial
	if cfg.Pipeline.CleanupPartial {
		policy = assets.RemovePartial
	}
	return Options{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		MaxDimension:   cfg.Pipeline.MaxDimension,
		AllowedFormats: formats,
		Partial:        policy,
	}, nil
}
