package face

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func solidRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestInspect_SupportedFormats(t *testing.T) {
	img := solidRGBA(8, 6, color.NRGBA{R: 200, G: 120, B: 40, A: 255})

	var bmpBuf, tiffBuf bytes.Buffer
	require.NoError(t, bmp.Encode(&bmpBuf, img))
	require.NoError(t, tiff.Encode(&tiffBuf, img, nil))

	tests := []struct {
		name   string
		data   []byte
		format string
	}{
		{"jpeg", encodeJPEG(t, img), "jpeg"},
		{"png", encodePNG(t, img), "png"},
		{"bmp", bmpBuf.Bytes(), "bmp"},
		{"tiff", tiffBuf.Bytes(), "tiff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := Inspect(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.format, info.Format)
			assert.Equal(t, 8, info.Width)
			assert.Equal(t, 6, info.Height)
			assert.Equal(t, 3, info.Channels)
		})
	}
}

func TestInspect_Grayscale(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	info, err := Inspect(encodePNG(t, img))
	require.NoError(t, err)
	assert.Equal(t, 1, info.Channels)
}

func TestInspect_RejectsTransparent(t *testing.T) {
	img := solidRGBA(4, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 128})
	_, err := Inspect(encodePNG(t, img))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestInspect_RejectsUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	img := image.NewPaletted(image.Rect(0, 0, 4, 4), []color.Color{color.Black, color.White})
	require.NoError(t, gif.Encode(&buf, img, nil))

	_, err := Inspect(buf.Bytes())
	assert.ErrorIs(t, err, ErrDecode)
}

func TestInspect_RejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{nil, {}, []byte("not an image"), {0xFF, 0xD8, 0xFF, 0x00}} {
		_, err := Inspect(data)
		assert.ErrorIs(t, err, ErrDecode)
	}
}
