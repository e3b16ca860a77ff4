package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docsummary/internal/chunker"
	"docsummary/internal/config"
	"docsummary/internal/database"
	"docsummary/internal/domain"
	"docsummary/internal/extract"
)

const (
	historyLimit      = 5
	readHeaderTimeout = 10 * time.Second
)

// Summarizer produces one final summary for extracted document text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Server exposes the upload-and-summarize API around the core pipeline.
type Server struct {
	cfg        config.Config
	db         *database.Database
	summarizer Summarizer
	httpServer *http.Server
	log        *slog.Logger
}

func New(
	cfg config.Config,
	db *database.Database,
	summarizer Summarizer,
	log *slog.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:        cfg,
		db:         db,
		summarizer: summarizer,
		log:        log,
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/upload", s.handleUpload)
	router.GET("/history", s.handleHistory)
	router.GET("/documents/:id", s.handleGetDocument)

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s
}

// Handler exposes the HTTP handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil &&
		!errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleUpload(c *gin.Context) {
	ctx := c.Request.Context()

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})

		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !extract.Supported(ext) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("unsupported file type %q", ext),
		})

		return
	}

	if file.Size > s.cfg.MaxFileSizeBytes() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("file size exceeds %dMB limit", s.cfg.MaxFileSizeMB),
		})

		return
	}

	uploadPath := filepath.Join(s.cfg.UploadDir, uuid.NewString()+ext)
	if err = c.SaveUploadedFile(file, uploadPath); err != nil {
		s.log.ErrorContext(ctx, "Failed to store upload",
			"error", err,
			"filename", file.Filename,
			"uploadPath", uploadPath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})

		return
	}

	text, err := extract.Text(uploadPath, s.cfg.MaxPages)
	if err != nil {
		s.removeUpload(ctx, uploadPath)

		var tooManyPages *extract.TooManyPagesError
		if errors.As(err, &tooManyPages) {
			c.JSON(http.StatusBadRequest, gin.H{"error": tooManyPages.Error()})

			return
		}

		s.log.ErrorContext(ctx, "Failed to extract text",
			"error", err,
			"filename", file.Filename,
			"uploadPath", uploadPath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to extract text"})

		return
	}

	if strings.TrimSpace(text) == "" {
		s.removeUpload(ctx, uploadPath)
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not extract text from file"})

		return
	}

	s.log.InfoContext(ctx, "Text is extracted",
		"filename", file.Filename,
		"textLength", len(text))

	summary, err := s.summarizer.Summarize(ctx, text)
	if err != nil {
		s.removeUpload(ctx, uploadPath)
		s.log.ErrorContext(ctx, "Failed to generate summary",
			"error", err,
			"filename", file.Filename,
			"textLength", len(text))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate summary"})

		return
	}

	chunks := chunker.Split(text, s.cfg.ChunkSize, s.cfg.ChunkOverlap)

	id, err := s.db.InsertDocument(ctx, domain.Document{
		Filename:   file.Filename,
		Filepath:   uploadPath,
		CharCount:  int64(len(text)),
		ChunkCount: int64(len(chunks)),
		Summary:    summary,
	})
	if err != nil {
		s.removeUpload(ctx, uploadPath)
		s.log.ErrorContext(ctx, "Failed to save document",
			"error", err,
			"filename", file.Filename)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save document"})

		return
	}

	s.log.InfoContext(ctx, "Document is summarized",
		"documentID", id,
		"filename", file.Filename,
		"chunkCount", len(chunks))

	c.JSON(http.StatusOK, gin.H{
		"id":       id,
		"filename": file.Filename,
		"summary":  summary,
	})
}

func (s *Server) handleHistory(c *gin.Context) {
	ctx := c.Request.Context()

	docs, err := s.db.RecentDocuments(ctx, historyLimit)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch recent documents",
			"error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})

		return
	}

	items := make([]gin.H, 0, len(docs))
	for _, doc := range docs {
		items = append(items, documentJSON(doc))
	}

	c.JSON(http.StatusOK, gin.H{"documents": items})
}

func (s *Server) handleGetDocument(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document ID must be an integer"})

		return
	}

	doc, err := s.db.GetDocument(ctx, id)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch document",
			"error", err,
			"documentID", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch document"})

		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})

		return
	}

	c.JSON(http.StatusOK, documentJSON(*doc))
}

func (s *Server) removeUpload(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.WarnContext(ctx, "Failed to remove upload file",
			"error", err,
			"path", path)
	}
}

func documentJSON(doc domain.Document) gin.H {
	return gin.H{
		"id":          doc.ID,
		"filename":    doc.Filename,
		"char_count":  doc.CharCount,
		"chunk_count": doc.ChunkCount,
		"summary":     doc.Summary,
		"created_at":  doc.CreatedAt.UTC().Format(time.RFC3339),
	}
}
