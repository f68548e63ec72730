package download

import (
	"all-me-match/pkg/models"
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
)

var ErrNoImages = errors.New("no images requested")

type Service struct {
	storageService StorageService
}

func NewService(storageService StorageService) *Service {
	return &Service{
		storageService: storageService,
	}
}

// ResolveImages looks up every requested image in the album before anything is streamed.
// Duplicate IDs are requested once.
func (s *Service) ResolveImages(ctx context.Context, albumName string, imageIDs []string) ([]models.ImageRef, error) {
	if len(imageIDs) == 0 {
		return nil, ErrNoImages
	}

	album, err := s.storageService.ResolveAlbum(ctx, albumName)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(imageIDs))
	images := make([]models.ImageRef, 0, len(imageIDs))
	for _, id := range imageIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		image, err := s.storageService.FindImage(ctx, album, id)
		if err != nil {
			return nil, err
		}
		images = append(images, image)
	}

	return images, nil
}

// StreamZipArchive downloads images and writes them into a ZIP archive on writer
// without temporary storage. Images that fail to download are left out.
// Returns the number of files written.
func (s *Service) StreamZipArchive(ctx context.Context, writer io.Writer, images []models.ImageRef) (int, error) {
	zipWriter := zip.NewWriter(writer)
	names := make(map[string]int, len(images))

	written := 0
	for _, image := range images {
		if err := ctx.Err(); err != nil {
			zipWriter.Close()
			return written, err
		}

		if err := s.addFileToZip(ctx, zipWriter, image, uniqueName(names, image.Name)); err != nil {
			// Continue with other files even if one fails
			slog.Warn("leaving image out of archive", "image_id", image.ID, "name", image.Name, "error", err)
			continue
		}
		written++
	}

	if err := zipWriter.Close(); err != nil {
		return written, fmt.Errorf("failed to finish ZIP archive: %w", err)
	}
	return written, nil
}

// addFileToZip downloads an image and adds it to the ZIP archive
func (s *Service) addFileToZip(ctx context.Context, zipWriter *zip.Writer, image models.ImageRef, name string) error {
	data, err := s.storageService.FetchImage(ctx, image)
	if err != nil {
		return fmt.Errorf("failed to download image: %w", err)
	}

	zipFile, err := zipWriter.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create ZIP entry: %w", err)
	}

	if _, err := zipFile.Write(data); err != nil {
		return fmt.Errorf("failed to write file to ZIP: %w", err)
	}

	return nil
}

// uniqueName returns name, or name with a " (n)" suffix when an earlier entry already used it
func uniqueName(names map[string]int, name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		name = "image"
	}

	count := names[name]
	names[name] = count + 1
	if count == 0 {
		return name
	}

	ext := path.Ext(name)
	return fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(name, ext), count, ext)
}
