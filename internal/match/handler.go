package match

import (
	"all-me-match/internal/storage"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Handler handles selfie match HTTP requests
type Handler struct {
	service     *Service
	maxFileSize int64
}

// NewHandler creates a new Handler instance. Selfies larger than maxFileSize
// bytes are rejected.
func NewHandler(service *Service, maxFileSize int64) *Handler {
	return &Handler{
		service:     service,
		maxFileSize: maxFileSize,
	}
}

// RegisterRoutes registers match routes with the Echo instance
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/albums/:album/match", h.Match)
	e.POST("/albums/:album/match-jobs", h.StartMatchJob)
	e.GET("/match-jobs/:jobId", h.GetJobStatus)
	e.DELETE("/match-jobs/:jobId", h.DeleteJob)
}

// Match handles POST /albums/:album/match
func (h *Handler) Match(c echo.Context) error {
	selfie, err := h.readSelfie(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	album := c.Param("album")
	result, err := h.service.MatchSelfie(c.Request().Context(), album, selfie, nil)
	if err != nil {
		return handleServiceError(c, album, err)
	}

	return c.JSON(http.StatusOK, NewMatchResponse(result))
}

// StartMatchJob handles POST /albums/:album/match-jobs
func (h *Handler) StartMatchJob(c echo.Context) error {
	selfie, err := h.readSelfie(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	album := c.Param("album")
	jobID, err := h.service.StartMatchJob(c.Request().Context(), album, selfie)
	if err != nil {
		return handleServiceError(c, album, err)
	}

	return c.JSON(http.StatusAccepted, StartJobResponse{
		JobID:  jobID,
		Status: jobStatusProcessing,
	})
}

// GetJobStatus handles GET /match-jobs/:jobId
func (h *Handler) GetJobStatus(c echo.Context) error {
	jobID := c.Param("jobId")

	if strings.TrimSpace(jobID) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "job_id is required",
		})
	}

	status, err := h.service.GetJobStatus(jobID)
	if err != nil {
		return handleServiceError(c, "", err)
	}

	return c.JSON(http.StatusOK, status)
}

// DeleteJob handles DELETE /match-jobs/:jobId
func (h *Handler) DeleteJob(c echo.Context) error {
	if err := h.service.DeleteJob(c.Param("jobId")); err != nil {
		return handleServiceError(c, "", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// readSelfie validates and reads the multipart "image" field
func (h *Handler) readSelfie(c echo.Context) ([]byte, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, errors.New("Image file is required")
	}

	if err := validateImageFile(file, h.maxFileSize); err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, errors.New("Failed to process image file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.maxFileSize+1))
	if err != nil {
		return nil, errors.New("Failed to read image file")
	}
	if int64(len(data)) > h.maxFileSize {
		return nil, fileTooLargeError(h.maxFileSize)
	}

	return data, nil
}

// validateImageFile validates the uploaded selfie
func validateImageFile(file *multipart.FileHeader, maxFileSize int64) error {
	if file.Size > maxFileSize {
		return fileTooLargeError(maxFileSize)
	}

	if file.Size == 0 {
		return errors.New("image file is empty")
	}

	if !storage.IsImageMimeType(file.Header.Get("Content-Type")) {
		return errors.New("invalid image format. Supported formats: JPEG, PNG, BMP, TIFF")
	}

	return nil
}

func fileTooLargeError(maxFileSize int64) error {
	return fmt.Errorf("image file size exceeds maximum allowed size of %dMB", maxFileSize/(1024*1024))
}

// handleServiceError maps service errors to HTTP responses
func handleServiceError(c echo.Context, album string, err error) error {
	resp := GetErrorResponse(err)
	if resp.StatusCode >= http.StatusInternalServerError {
		slog.Error("match request failed", "album", album, "status", resp.StatusCode, "error", err)
	}
	return c.JSON(resp.StatusCode, map[string]string{
		"error": resp.Message,
	})
}
