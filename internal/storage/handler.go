package storage

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for album browsing
type Handler struct {
	service *Service
}

// NewHandler creates a new storage handler
func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers storage routes with the Echo router
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/albums", h.ListAlbums)
	e.GET("/albums/:album/images", h.ListImages)
	e.GET("/healthz", h.Health)
}

// ListAlbums handles GET /albums
func (h *Handler) ListAlbums(c echo.Context) error {
	albums, err := h.service.ListAlbums(c.Request().Context())
	if err != nil {
		slog.Error("failed to list albums", "error", err)
		return handleStorageError(c, err)
	}

	if len(albums) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "No albums found",
		})
	}

	return c.JSON(http.StatusOK, ListAlbumsResponse{
		TotalAlbums: len(albums),
		Albums:      albums,
	})
}

// ListImages handles GET /albums/:album/images
func (h *Handler) ListImages(c echo.Context) error {
	ctx := c.Request().Context()

	album, err := h.service.ResolveAlbum(ctx, c.Param("album"))
	if err != nil {
		return handleStorageError(c, err)
	}

	images, err := h.service.ListImages(ctx, album)
	if err != nil {
		slog.Error("failed to list album images", "album", album.Name, "error", err)
		return handleStorageError(c, err)
	}

	return c.JSON(http.StatusOK, ListImagesResponse{
		Album:  album,
		Images: images,
	})
}

// Health handles GET /healthz
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"cache":  h.service.CacheStats(),
	})
}

// handleStorageError maps storage errors to HTTP responses
func handleStorageError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrFolderNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Album not found",
		})
	case errors.Is(err, ErrImageNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Image not found in album",
		})
	case errors.Is(err, ErrRemoteUnavailable):
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": "Photo storage is temporarily unavailable. Please try again later.",
		})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "An unexpected error occurred. Please try again.",
		})
	}
}
