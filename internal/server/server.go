package server

import (
	"context"
	"errors"
	"io/fs"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"imageingest/internal/imageproc"
	"imageingest/internal/logger"
	"imageingest/internal/models"
)

// HeaderUploaderID carries the uploader id set by the upstream identity
// layer. The value is trusted as is.
const HeaderUploaderID = "X-Uploader-ID"

const multipartOverhead = 1 << 20

type Ingestor interface {
	ProcessUpload(ctx context.Context, u imageproc.Upload, uploaderID string) (*models.UploadResult, error)
	Promote(ctx context.Context, stagedPath string, subjectID int64) (*models.Promotion, error)
	Delete(ctx context.Context, path string) models.Deletion
}

type Server struct {
	cfg    *models.Config
	router *gin.Engine
	svc    Ingestor
	http   *http.Server
	log    zerolog.Logger
}

// NewServer wires the routes. metricsHandler may be nil.
func NewServer(cfg *models.Config, svc Ingestor, l zerolog.Logger, metricsHandler http.Handler) *Server {
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware(l))
	r.MaxMultipartMemory = 8 << 20
	r.Static("/files", cfg.Storage.PublicRoot)

	s := &Server{
		cfg:    cfg,
		router: r,
		svc:    svc,
		log:    l,
	}
	s.http = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}
	r.POST("/uploads", s.handleUpload)
	r.POST("/assets/promote", s.handlePromote)
	r.DELETE("/assets", s.handleDelete)

	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleUpload(c *gin.Context) {
	uploaderID := c.GetHeader(HeaderUploaderID)
	if uploaderID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing uploader identity"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxUploadBytes+multipartOverhead)

	var upload imageproc.Upload
	fh, err := c.FormFile("image")
	if err != nil {
		upload = imageproc.FromTransportError(transportStatus(err))
	} else {
		upload = imageproc.FromFileHeader(fh)
	}

	res, err := s.svc.ProcessUpload(c.Request.Context(), upload, uploaderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

type promoteRequest struct {
	StagedPath string `json:"staged_path" binding:"required"`
	SubjectID  int64  `json:"subject_id" binding:"required"`
}

func (s *Server) handlePromote(c *gin.Context) {
	var req promoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "staged_path and subject_id are required"})
		return
	}
	p, err := s.svc.Promote(c.Request.Context(), req.StagedPath, req.SubjectID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleDelete(c *gin.Context) {
	if path := c.Query("path"); path != "" {
		s.svc.Delete(c.Request.Context(), path)
	}
	c.Status(http.StatusNoContent)
}

// transportStatus maps a multipart parsing failure onto the upload
// transport outcome the validator reports. Truncated bodies and anything
// unrecognized count as a partial transfer.
func transportStatus(err error) imageproc.TransportStatus {
	var maxBytes *http.MaxBytesError
	var pathErr *fs.PathError
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return imageproc.TransportNoFile
	case errors.As(err, &maxBytes), errors.Is(err, multipart.ErrMessageTooLarge):
		return imageproc.TransportSizeExceeded
	case errors.As(err, &pathErr):
		return imageproc.TransportWriteFailed
	default:
		return imageproc.TransportPartial
	}
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch imageproc.KindOf(err) {
	case imageproc.KindValidation:
		status = http.StatusBadRequest
	case imageproc.KindUnsupportedFormat:
		status = http.StatusUnsupportedMediaType
	case imageproc.KindDecode:
		status = http.StatusUnprocessableEntity
	case imageproc.KindNotFound:
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": imageproc.PublicMessage(err)})
}
