package storage

import (
	"all-me-match/pkg/models"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrImageNotFound = errors.New("image not found in album")

// Service exposes albums stored under a single root folder of the remote store
type Service struct {
	store        RemoteStore
	cache        *DirectoryCache
	rootFolderID string
}

// NewService creates a storage service. An empty rootFolderID means albums are the
// store's top-level folders.
func NewService(store RemoteStore, cache *DirectoryCache, rootFolderID string) *Service {
	return &Service{
		store:        store,
		cache:        cache,
		rootFolderID: rootFolderID,
	}
}

// ListAlbums lists every album. Album listings are not cached so newly created
// albums show up immediately.
func (s *Service) ListAlbums(ctx context.Context) ([]models.Album, error) {
	var (
		folders []models.Folder
		err     error
	)
	if s.rootFolderID == "" {
		folders, err = s.store.ListTopLevelFolders(ctx)
	} else {
		folders, err = s.store.ListSubfolders(ctx, s.rootFolderID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: listing albums: %w", ErrRemoteUnavailable, err)
	}

	albums := make([]models.Album, 0, len(folders))
	for _, folder := range folders {
		albums = append(albums, models.Album{ID: folder.ID, Name: folder.Name})
	}
	return albums, nil
}

// ResolveAlbum resolves an album name to its folder through the Directory Cache
func (s *Service) ResolveAlbum(ctx context.Context, name string) (models.Album, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Album{}, ErrFolderNotFound
	}

	id, err := s.cache.ResolveFolderID(ctx, name, s.rootFolderID)
	if err != nil {
		return models.Album{}, err
	}
	return models.Album{ID: id, Name: name}, nil
}

// ListImages lists the images of a resolved album
func (s *Service) ListImages(ctx context.Context, album models.Album) ([]models.ImageRef, error) {
	return s.cache.ListImages(ctx, album.ID)
}

// FindImage looks up one image of an album by its ID
func (s *Service) FindImage(ctx context.Context, album models.Album, imageID string) (models.ImageRef, error) {
	images, err := s.cache.ListImages(ctx, album.ID)
	if err != nil {
		return models.ImageRef{}, err
	}

	idx := slices.IndexFunc(images, func(img models.ImageRef) bool { return img.ID == imageID })
	if idx < 0 {
		return models.ImageRef{}, fmt.Errorf("%w: %s", ErrImageNotFound, imageID)
	}
	return images[idx], nil
}

// FetchImage downloads the raw bytes of an image
func (s *Service) FetchImage(ctx context.Context, image models.ImageRef) ([]byte, error) {
	if image.ContentURL == "" {
		return nil, fmt.Errorf("content URL not available for image %s", image.ID)
	}
	return s.store.FetchBytes(ctx, image.ContentURL)
}

// Upload stores a file inside the given folder
func (s *Service) Upload(ctx context.Context, folderID string, data []byte, filename string) (*models.UploadedFile, error) {
	uploaded, err := s.store.Upload(ctx, folderID, data, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: uploading %s: %w", ErrRemoteUnavailable, filename, err)
	}
	return uploaded, nil
}

// CacheStats returns Directory Cache counters
func (s *Service) CacheStats() CacheStats {
	return s.cache.Stats()
}

// IsImageMimeType checks if a mime type is an image
func IsImageMimeType(mimeType string) bool {
	imageMimeTypes := []string{
		"image/jpeg",
		"image/jpg",
		"image/png",
		"image/bmp",
		"image/tiff",
	}
	return slices.Contains(imageMimeTypes, strings.ToLower(mimeType))
}
