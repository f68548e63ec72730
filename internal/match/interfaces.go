package match

import (
	"all-me-match/internal/face"
	"all-me-match/pkg/models"
	"context"
)

type AlbumStore interface {
	ResolveAlbum(ctx context.Context, name string) (models.Album, error)
	ListImages(ctx context.Context, album models.Album) ([]models.ImageRef, error)
	FetchImage(ctx context.Context, image models.ImageRef) ([]byte, error)
	Upload(ctx context.Context, folderID string, data []byte, filename string) (*models.UploadedFile, error)
}

type FaceProvider interface {
	Extract(ctx context.Context, imageData []byte) (face.Extraction, error)
	Dim() int
}
