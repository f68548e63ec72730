package storage

import (
	"all-me-match/pkg/models"
	"context"
)

// RemoteStore defines the operations the matcher needs from a cloud file store
type RemoteStore interface {
	ListTopLevelFolders(ctx context.Context) ([]models.Folder, error)
	ListSubfolders(ctx context.Context, parentID string) ([]models.Folder, error)
	// FindFolder returns ErrFolderNotFound when no folder with that name exists under parentID
	FindFolder(ctx context.Context, name, parentID string) (*models.Folder, error)
	ListImages(ctx context.Context, folderID string) ([]models.ImageRef, error)
	FetchBytes(ctx context.Context, url string) ([]byte, error)
	Upload(ctx context.Context, folderID string, data []byte, filename string) (*models.UploadedFile, error)
}
