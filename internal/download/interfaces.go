package download

import (
	"all-me-match/pkg/models"
	"context"
)

type StorageService interface {
	ResolveAlbum(ctx context.Context, name string) (models.Album, error)
	FindImage(ctx context.Context, album models.Album, imageID string) (models.ImageRef, error)
	FetchImage(ctx context.Context, image models.ImageRef) ([]byte, error)
}
