// Package http provides the HTTP surface of the askflow service.
package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tliang07/askflow/internal/domain"
)

// Service is the application surface the handlers depend on.
type Service interface {
	Ask(ctx context.Context, userID, message string) (*domain.AskResult, error)
	IngestPDF(ctx context.Context, userID, filePath, filename string) (*domain.IngestResult, error)
	GetRun(ctx context.Context, runID string) (*domain.Run, error)
	ListRuns(ctx context.Context, userID string, limit int) ([]domain.Run, error)
	Health() map[string]any
}

// Handler handles HTTP requests.
type Handler struct {
	svc            Service
	storageDir     string
	maxUploadBytes int64
}

// NewHandler creates a new handler.
func NewHandler(svc Service, storageDir string, maxUploadBytes int64) *Handler {
	return &Handler{
		svc:            svc,
		storageDir:     storageDir,
		maxUploadBytes: maxUploadBytes,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/ask", h.Ask)

	e.POST("/files/upload", h.UploadFile)
	e.POST("/files/upload-multiple", h.UploadMultiple)

	e.GET("/runs/:run_id", h.GetRun)
	e.GET("/runs", h.ListRuns)

	e.GET("/health", h.Health)
}

// Health returns the capability/config snapshot.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Health())
}
