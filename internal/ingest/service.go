// Package ingest ties the image pipeline to staging, promotion and deletion.
package ingest

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"imageingest/internal/assets"
	"imageingest/internal/events"
	"imageingest/internal/imageproc"
	"imageingest/internal/logger"
	"imageingest/internal/metrics"
	"imageingest/internal/models"
)

// Options configures a Service.
type Options struct {
	MaxUploadBytes int64
	MaxDimension   int
	AllowedFormats []imageproc.Format
	Partial        assets.PartialPolicy
	Publisher      events.Publisher
	Metrics        metrics.Metrics
}

// Service implements processUpload, promote and delete. Each call runs
// synchronously to completion; there is no shared state besides the
// filesystem.
type Service struct {
	layout    *assets.Layout
	allocator *assets.Allocator
	promoter  *assets.Promoter
	deleter   *assets.Deleter
	opts      Options
}

// New builds a Service over layout using subjects for promotion lookups.
func New(layout *assets.Layout, subjects assets.SubjectLookup, opts Options) *Service {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = imageproc.DefaultMaxUploadBytes
	}
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = imageproc.DefaultMaxDimension
	}
	if len(opts.AllowedFormats) == 0 {
		opts.AllowedFormats = imageproc.AllFormats
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Nop{}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Noop{}
	}
	return &Service{
		layout:    layout,
		allocator: assets.NewAllocator(layout),
		promoter:  assets.NewPromoter(layout, subjects),
		deleter:   assets.NewDeleter(layout),
		opts:      opts,
	}
}

// ProcessUpload validates u, derives main/thumb/card and stages them under
// the uploader's directory.
func (s *Service) ProcessUpload(ctx context.Context, u imageproc.Upload, uploaderID string) (*models.UploadResult, error) {
	start := time.Now()
	l := logger.Ctx(ctx).With().Str(logger.FieldUploader, uploaderID).Logger()

	res, err := s.processUpload(l, u, uploaderID)
	if err != nil {
		kind := imageproc.KindOf(err)
		s.opts.Metrics.ObserveUpload(kind.String(), time.Since(start).Seconds())
		logFailure(l, err, "upload rejected")
		return nil, err
	}
	s.opts.Metrics.ObserveUpload("ok", time.Since(start).Seconds())

	ev := events.NewEvent(events.TypeStaged, res.FilePath)
	ev.UploaderID = uploaderID
	ev.Paths = []string{res.FilePath, res.ThumbPath, res.CardPath}
	s.publish(ctx, l, ev)

	l.Info().
		Str("path", res.FilePath).
		Str("mime", res.MIMEType).
		Int("width", res.Width).
		Int("height", res.Height).
		Int64("bytes", res.FileSizeBytes).
		Msg("upload staged")
	return res, nil
}

func (s *Service) processUpload(l zerolog.Logger, u imageproc.Upload, uploaderID string) (*models.UploadResult, error) {
	data, err := imageproc.Validate(u, s.opts.MaxUploadBytes)
	if err != nil {
		return nil, err
	}
	format, err := imageproc.Detect(data, s.opts.AllowedFormats)
	if err != nil {
		return nil, err
	}
	derivs, err := imageproc.Derive(data, format, s.opts.MaxDimension)
	if err != nil {
		return nil, err
	}

	staged, err := s.allocator.Stage(uploaderID, derivs, s.opts.Partial)
	if err != nil {
		for _, f := range staged {
			l.Error().Str("path", f.Path).Msg("orphaned derivative left in staging")
		}
		return nil, err
	}

	byVariant := make(map[imageproc.Variant]assets.StagedFile, len(staged))
	for _, f := range staged {
		byVariant[f.Variant] = f
	}
	main := byVariant[imageproc.VariantMain]
	return &models.UploadResult{
		FileName:      main.Name,
		FilePath:      main.Path,
		FileSizeBytes: main.Size,
		MIMEType:      format.MIME(),
		Width:         main.Width,
		Height:        main.Height,
		ThumbPath:     byVariant[imageproc.VariantThumb].Path,
		CardPath:      byVariant[imageproc.VariantCard].Path,
	}, nil
}

// Promote moves a staged asset group into the subject's production
// directory. Derivative failures are logged and reported, never rolled back.
func (s *Service) Promote(ctx context.Context, stagedPath string, subjectID int64) (*models.Promotion, error) {
	l := logger.Ctx(ctx).With().Int64(logger.FieldSubject, subjectID).Str("staged_path", stagedPath).Logger()

	p, err := s.promoter.Promote(ctx, stagedPath, subjectID)
	if err != nil {
		s.opts.Metrics.IncPromotion(imageproc.KindOf(err).String())
		logFailure(l, err, "promotion failed")
		return nil, err
	}
	s.opts.Metrics.IncPromotion("ok")
	for _, d := range p.Derivatives {
		s.opts.Metrics.IncDerivativeMove(d.Variant, d.Status)
		if d.Status != models.OutcomeMoved {
			l.Warn().Str("variant", d.Variant).Str("status", d.Status).Str("error", d.Error).
				Str("path", d.Path).Msg("derivative not promoted")
		}
	}

	ev := events.NewEvent(events.TypePromoted, p.ProductionPath)
	ev.SubjectID = subjectID
	s.publish(ctx, l, ev)

	l.Info().Str("production_path", p.ProductionPath).Bool("complete", p.Complete()).Msg("asset promoted")
	return p, nil
}

// Delete removes an asset group. It never fails.
func (s *Service) Delete(ctx context.Context, path string) models.Deletion {
	l := logger.Ctx(ctx).With().Str("path", path).Logger()

	d := s.deleter.Delete(path)
	s.opts.Metrics.IncDeletion(d.Existed)
	if !d.Existed {
		l.Debug().Msg("nothing to delete")
		return d
	}
	for _, f := range d.Files {
		if f.Failed() {
			l.Warn().Str("variant", f.Variant).Str("error", f.Error).Msg("derivative not removed")
		}
	}
	s.publish(ctx, l, events.NewEvent(events.TypeDeleted, path))
	l.Info().Bool("dir_removed", d.DirRemoved).Msg("asset deleted")
	return d
}

func (s *Service) publish(ctx context.Context, l zerolog.Logger, ev events.Event) {
	if err := s.opts.Publisher.Publish(ctx, ev); err != nil {
		l.Warn().Err(err).Str("event", ev.Type).Msg("failed to publish event")
	}
}

// logFailure logs client-caused failures at info and everything else with
// the full cause at error level.
func logFailure(l zerolog.Logger, err error, msg string) {
	kind := imageproc.KindOf(err)
	ev := l.Error()
	switch kind {
	case imageproc.KindValidation, imageproc.KindUnsupportedFormat, imageproc.KindNotFound:
		ev = l.Info()
	}
	ev.Err(err).
		Str(logger.FieldKind, kind.String()).
		Str(logger.FieldOp, imageproc.OpOf(err)).
		Msg(msg)
}
