package thumbnail_test

import (
	"all-me-match/internal/storage"
	"all-me-match/internal/storage/mock"
	"all-me-match/internal/thumbnail"
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestServer(t *testing.T) (*echo.Echo, *mock.MockRemoteStore) {
	store := mock.NewMockRemoteStore()
	store.AddFolder("root", "album-1", "Wedding")
	store.AddImage("album-1", "img-1", "wide.png", testPNG(t, 200, 100))
	albums := storage.NewService(store, storage.NewDirectoryCache(store), "root")

	e := echo.New()
	thumbnail.NewHandler(albums).RegisterRoutes(e)
	return e, store
}

func TestResize(t *testing.T) {
	out, err := thumbnail.Resize(testPNG(t, 200, 100), 50)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Width)
	assert.Equal(t, 25, cfg.Height)
}

func TestResize_SmallImageKeepsSize(t *testing.T) {
	out, err := thumbnail.Resize(testPNG(t, 20, 30), 50)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Width)
	assert.Equal(t, 30, cfg.Height)
}

func TestResize_InvalidImage(t *testing.T) {
	_, err := thumbnail.Resize([]byte("nope"), 50)
	assert.Error(t, err)
}

func TestImageProxy(t *testing.T) {
	e, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/albums/Wedding/images/img-1/content", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/albums/Wedding/images/img-1/content?size=64", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get(echo.HeaderContentType))
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
}

func TestImageProxy_Errors(t *testing.T) {
	e, store := newTestServer(t)
	store.AddImage("album-1", "img-2", "gone.png", nil)
	store.FetchErrors["mock://files/img-2"] = errors.New("404")

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"unknown album", "/albums/Missing/images/img-1/content", http.StatusNotFound},
		{"unknown image", "/albums/Wedding/images/nope/content", http.StatusNotFound},
		{"bad size", "/albums/Wedding/images/img-1/content?size=abc", http.StatusBadRequest},
		{"size too big", "/albums/Wedding/images/img-1/content?size=99999", http.StatusBadRequest},
		{"fetch failure", "/albums/Wedding/images/img-2/content", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
