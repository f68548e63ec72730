package storage

import "all-me-match/pkg/models"

// ListAlbumsResponse represents the response for listing albums
type ListAlbumsResponse struct {
	TotalAlbums int            `json:"total_albums"`
	Albums      []models.Album `json:"albums"`
}

// ListImagesResponse represents the response for listing an album's images
type ListImagesResponse struct {
	Album  models.Album      `json:"album"`
	Images []models.ImageRef `json:"images"`
}

// CacheStats reports Directory Cache effectiveness
type CacheStats struct {
	FolderHits   int64 `json:"folder_hits"`
	FolderMisses int64 `json:"folder_misses"`
	ImageHits    int64 `json:"image_hits"`
	ImageMisses  int64 `json:"image_misses"`
	RemoteCalls  int64 `json:"remote_calls"`
	Folders      int   `json:"cached_folders"`
	Listings     int   `json:"cached_listings"`
}
