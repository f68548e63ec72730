package face

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

var supportedFormats = map[string]bool{
	"jpeg": true,
	"png":  true,
	"bmp":  true,
	"tiff": true,
}

// ImageInfo describes a decoded image
type ImageInfo struct {
	Format   string
	Width    int
	Height   int
	Channels int
}

// Inspect decodes data and checks it is an image the face model can read:
// a supported format, non-zero size, and either one gray channel or three
// colour channels. Alpha is accepted only when every pixel is opaque.
func Inspect(data []byte) (ImageInfo, error) {
	if len(data) == 0 {
		return ImageInfo{}, fmt.Errorf("%w: empty image data", ErrDecode)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if !supportedFormats[format] {
		return ImageInfo{}, fmt.Errorf("%w: unsupported format %s", ErrDecode, format)
	}

	bounds := img.Bounds()
	info := ImageInfo{
		Format:   format,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Channels: channelCount(img),
	}
	if info.Width == 0 || info.Height == 0 {
		return ImageInfo{}, fmt.Errorf("%w: image has zero size", ErrDecode)
	}
	if info.Channels != 1 && info.Channels != 3 {
		return ImageInfo{}, fmt.Errorf("%w: unsupported channel count %d", ErrDecode, info.Channels)
	}

	return info, nil
}

func channelCount(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	case *image.CMYK:
		return 4
	}

	if o, ok := img.(interface{ Opaque() bool }); ok && !o.Opaque() {
		return 4
	}
	return 3
}
