package face

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEmbedder(t *testing.T, handler http.HandlerFunc) *HTTPEmbedder {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPEmbedder(server.URL+"/", 5*time.Second)
}

func TestHTTPEmbedder_Embed(t *testing.T) {
	embedder := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/embed/face", r.URL.Path)

		file, _, err := r.FormFile("file")
		if assert.NoError(t, err) {
			data, _ := io.ReadAll(file)
			assert.Equal(t, "image-bytes", string(data))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"faces_count":2,"faces":[
			{"embedding":[1,0,0],"bbox":[0,0,10,10],"det_score":0.9},
			{"embedding":[0,1,0],"bbox":[0,0,50,40],"det_score":0.8}
		]}`)
	})

	embedding, err := embedder.Embed(context.Background(), []byte("image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0}, embedding)
}

func TestHTTPEmbedder_Embed_FirstFaceWithoutBoxes(t *testing.T) {
	embedder := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"faces":[{"embedding":[0.5,0.5]},{"embedding":[1,1]}]}`)
	})

	embedding, err := embedder.Embed(context.Background(), []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, embedding)
}

func TestHTTPEmbedder_Embed_NoFaces(t *testing.T) {
	embedder := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"faces_count":0,"faces":[]}`)
	})

	_, err := embedder.Embed(context.Background(), []byte("x"))
	assert.ErrorIs(t, err, ErrNoFace)
}

func TestHTTPEmbedder_Embed_ErrorResponses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"no face detail", http.StatusBadRequest, `{"detail":"No face detected"}`, ErrNoFace},
		{"bad image detail", http.StatusBadRequest, `{"detail":"cannot identify image file"}`, ErrDecode},
		{"bad image no body", http.StatusUnprocessableEntity, ``, ErrDecode},
		{"server error", http.StatusInternalServerError, `oops`, ErrServiceUnavailable},
		{"unavailable detail", http.StatusServiceUnavailable, `{"detail":"model loading"}`, ErrServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := embedder.Embed(context.Background(), []byte("x"))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHTTPEmbedder_Embed_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewHTTPEmbedder(url, time.Second).Embed(context.Background(), []byte("x"))
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestHTTPEmbedder_Embed_Canceled(t *testing.T) {
	embedder := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"faces":[]}`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := embedder.Embed(ctx, []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
