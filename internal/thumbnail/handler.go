package thumbnail

import (
	"all-me-match/internal/storage"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const maxThumbnailSize = 2048

type Handler struct {
	source ImageSource
}

func NewHandler(source ImageSource) *Handler {
	return &Handler{
		source: source,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/albums/:album/images/:imageId/content", h.handleImageProxy)
}

// handleImageProxy serves album images with the server's Drive credentials.
// ?size=N returns a JPEG scaled to fit within N pixels.
func (h *Handler) handleImageProxy(c echo.Context) error {
	size := 0
	if raw := c.QueryParam("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxThumbnailSize {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "size must be between 1 and 2048",
			})
		}
		size = n
	}

	ctx := c.Request().Context()
	album, err := h.source.ResolveAlbum(ctx, c.Param("album"))
	if err != nil {
		return handleProxyError(c, err)
	}

	image, err := h.source.FindImage(ctx, album, c.Param("imageId"))
	if err != nil {
		return handleProxyError(c, err)
	}

	data, err := h.source.FetchImage(ctx, image)
	if err != nil {
		slog.Error("failed to fetch image", "album", album.Name, "image_id", image.ID, "error", err)
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "Failed to fetch image",
		})
	}

	contentType := http.DetectContentType(data)
	if size > 0 {
		resized, err := Resize(data, size)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{
				"error": "Image cannot be resized",
			})
		}
		data = resized
		contentType = "image/jpeg"
	}

	c.Response().Header().Set("Cache-Control", "public, max-age=3600") // Cache for 1 hour
	return c.Blob(http.StatusOK, contentType, data)
}

func handleProxyError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, storage.ErrFolderNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Album not found",
		})
	case errors.Is(err, storage.ErrImageNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Image not found in album",
		})
	case errors.Is(err, storage.ErrRemoteUnavailable):
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": "Photo storage is temporarily unavailable. Please try again later.",
		})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "An unexpected error occurred. Please try again.",
		})
	}
}
