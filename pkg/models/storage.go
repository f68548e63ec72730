package models

import (
	"encoding/json"
	"fmt"
)

// Album represents an event album, a folder directly under the album root
type Album struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Folder is a folder entry returned by the remote store
type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ImageRef represents one candidate photo inside an album
type ImageRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ContentURL string `json:"content_url"` // Authenticated URL returning the raw image bytes
}

// UploadedFile is the result of uploading a file to the remote store
type UploadedFile struct {
	ID       string `json:"id"`
	ViewLink string `json:"view_link"`
}

// EncodeImageRefs encodes an image listing as a JSON array, preserving order
func EncodeImageRefs(images []ImageRef) ([]byte, error) {
	if images == nil {
		images = []ImageRef{}
	}
	data, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image listing: %w", err)
	}
	return data, nil
}

// DecodeImageRefs decodes an image listing produced by EncodeImageRefs
func DecodeImageRefs(data []byte) ([]ImageRef, error) {
	var images []ImageRef
	if err := json.Unmarshal(data, &images); err != nil {
		return nil, fmt.Errorf("failed to decode image listing: %w", err)
	}
	return images, nil
}
