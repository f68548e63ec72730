package match

import (
	"all-me-match/internal/face"
	"all-me-match/internal/storage"
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetErrorResponse(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ErrNoFaceInQuery, http.StatusBadRequest},
		{fmt.Errorf("%w: bad header", ErrInvalidSelfie), http.StatusBadRequest},
		{face.ErrDimensionMismatch, http.StatusBadRequest},
		{fmt.Errorf("%w: Wedding", ErrAlbumNotFound), http.StatusNotFound},
		{ErrJobNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: %w", ErrCanceled, context.Canceled), http.StatusRequestTimeout},
		{fmt.Errorf("%w: listing: boom", storage.ErrRemoteUnavailable), http.StatusServiceUnavailable},
		{face.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{face.ErrTimeout, http.StatusGatewayTimeout},
		{errors.New("something else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			resp := GetErrorResponse(tt.err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, resp.Message)
		})
	}
}
