package match

import (
	"all-me-match/internal/face"
	"all-me-match/internal/storage"
	"errors"
	"net/http"
)

var (
	ErrNoFaceInQuery = errors.New("no face detected in selfie")
	ErrInvalidSelfie = errors.New("selfie is not a readable image")
	ErrAlbumNotFound = errors.New("album not found")
	ErrCanceled      = errors.New("match canceled before any match was confirmed")
	ErrJobNotFound   = errors.New("job not found")
)

type ErrorResponse struct {
	StatusCode int
	Message    string
}

// GetErrorResponse returns appropriate HTTP response for an error
func GetErrorResponse(err error) ErrorResponse {
	switch {
	case errors.Is(err, ErrNoFaceInQuery):
		return ErrorResponse{http.StatusBadRequest, "No face detected in selfie. Please use a clear photo of your face."}
	case errors.Is(err, ErrInvalidSelfie):
		return ErrorResponse{http.StatusBadRequest, "Invalid image format. Supported formats: JPEG, PNG, BMP, TIFF"}
	case errors.Is(err, face.ErrDimensionMismatch):
		return ErrorResponse{http.StatusBadRequest, err.Error()}
	case errors.Is(err, ErrAlbumNotFound):
		return ErrorResponse{http.StatusNotFound, "Album not found"}
	case errors.Is(err, ErrJobNotFound):
		return ErrorResponse{http.StatusNotFound, "Job not found"}
	case errors.Is(err, ErrCanceled):
		return ErrorResponse{http.StatusRequestTimeout, "Request was canceled before any match was found."}
	case errors.Is(err, storage.ErrRemoteUnavailable):
		return ErrorResponse{http.StatusServiceUnavailable, "Photo storage is temporarily unavailable. Please try again later."}
	case errors.Is(err, face.ErrServiceUnavailable):
		return ErrorResponse{http.StatusServiceUnavailable, "Face matching service is temporarily unavailable. Please try again later."}
	case errors.Is(err, face.ErrTimeout):
		return ErrorResponse{http.StatusGatewayTimeout, "Request timed out. Please try again."}
	default:
		return ErrorResponse{http.StatusInternalServerError, "An unexpected error occurred. Please try again."}
	}
}
