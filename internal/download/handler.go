package download

import (
	"all-me-match/internal/storage"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for download operations
type Handler struct {
	service *Service
}

// NewHandler creates a new download handler
func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers download routes with the Echo router
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/albums/:album/download", h.DownloadZip)
}

// DownloadZip handles POST /albums/:album/download
// It streams the requested album images as a ZIP archive directly to the response
func (h *Handler) DownloadZip(c echo.Context) error {
	var req ZipRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	images, err := h.service.ResolveImages(ctx, c.Param("album"), req.ImageIDs)
	if err != nil {
		return handleDownloadError(c, err)
	}

	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("photos-%s.zip", timestamp)

	c.Response().Header().Set(echo.HeaderContentType, "application/zip")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	c.Response().WriteHeader(http.StatusOK)

	written, err := h.service.StreamZipArchive(ctx, c.Response().Writer, images)
	if err != nil {
		// Headers are already sent, the client sees a truncated archive
		slog.Error("failed to stream ZIP archive", "album", c.Param("album"), "written", written, "error", err)
		return nil
	}

	slog.Info("streamed ZIP archive", "album", c.Param("album"), "requested", len(images), "written", written)
	return nil
}

func handleDownloadError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrNoImages):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "No images provided for download",
		})
	case errors.Is(err, storage.ErrFolderNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Album not found",
		})
	case errors.Is(err, storage.ErrImageNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": err.Error(),
		})
	case errors.Is(err, storage.ErrRemoteUnavailable):
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": "Photo storage is temporarily unavailable. Please try again later.",
		})
	default:
		slog.Error("failed to prepare download", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "An unexpected error occurred. Please try again.",
		})
	}
}
