// Package mock provides an in-memory storage.RemoteStore for testing.
package mock

import (
	"all-me-match/internal/storage"
	"all-me-match/pkg/models"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// MockRemoteStore is an in-memory implementation of storage.RemoteStore
type MockRemoteStore struct {
	mu       sync.RWMutex
	folders  map[string][]models.Folder   // parentID -> child folders, "" for top level
	images   map[string][]models.ImageRef // folderID -> images
	contents map[string][]byte            // content URL -> bytes
	uploads  []Upload

	// Error injection
	FindFolderError error
	ListImagesError error
	ListError       error
	FetchErrors     map[string]error // content URL -> error
	UploadError     error

	// Blocks FetchBytes until the channel is closed, when set
	FetchGate chan struct{}

	// Call counters
	FindFolderCalls atomic.Int64
	ListImagesCalls atomic.Int64
	FetchCalls      atomic.Int64
}

// Upload records a call to Upload
type Upload struct {
	FolderID string
	Filename string
	Data     []byte
}

// NewMockRemoteStore creates an empty mock store
func NewMockRemoteStore() *MockRemoteStore {
	return &MockRemoteStore{
		folders:     make(map[string][]models.Folder),
		images:      make(map[string][]models.ImageRef),
		contents:    make(map[string][]byte),
		FetchErrors: make(map[string]error),
	}
}

// AddFolder adds a folder under parentID ("" for top level)
func (m *MockRemoteStore) AddFolder(parentID, id, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.folders[parentID] = append(m.folders[parentID], models.Folder{ID: id, Name: name})
}

// AddImage adds an image with the given content to a folder and returns its reference
func (m *MockRemoteStore) AddImage(folderID, id, name string, data []byte) models.ImageRef {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := models.ImageRef{
		ID:         id,
		Name:       name,
		ContentURL: fmt.Sprintf("mock://files/%s", id),
	}
	m.images[folderID] = append(m.images[folderID], ref)
	m.contents[ref.ContentURL] = data
	return ref
}

// Uploads returns every recorded upload
func (m *MockRemoteStore) Uploads() []Upload {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Upload(nil), m.uploads...)
}

func (m *MockRemoteStore) ListTopLevelFolders(ctx context.Context) ([]models.Folder, error) {
	return m.ListSubfolders(ctx, "")
}

func (m *MockRemoteStore) ListSubfolders(ctx context.Context, parentID string) ([]models.Folder, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Folder(nil), m.folders[parentID]...), nil
}

func (m *MockRemoteStore) FindFolder(ctx context.Context, name, parentID string) (*models.Folder, error) {
	m.FindFolderCalls.Add(1)
	if m.FindFolderError != nil {
		return nil, m.FindFolderError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, folder := range m.folders[parentID] {
		if folder.Name == name {
			return &folder, nil
		}
	}
	return nil, storage.ErrFolderNotFound
}

func (m *MockRemoteStore) ListImages(ctx context.Context, folderID string) ([]models.ImageRef, error) {
	m.ListImagesCalls.Add(1)
	if m.ListImagesError != nil {
		return nil, m.ListImagesError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.ImageRef(nil), m.images[folderID]...), nil
}

func (m *MockRemoteStore) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.FetchCalls.Add(1)
	if m.FetchGate != nil {
		select {
		case <-m.FetchGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.FetchErrors[url]; err != nil {
		return nil, err
	}
	data, ok := m.contents[url]
	if !ok {
		return nil, fmt.Errorf("request failed with status 404: %s", url)
	}
	return data, nil
}

func (m *MockRemoteStore) Upload(ctx context.Context, folderID string, data []byte, filename string) (*models.UploadedFile, error) {
	if m.UploadError != nil {
		return nil, m.UploadError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads = append(m.uploads, Upload{FolderID: folderID, Filename: filename, Data: data})
	id := fmt.Sprintf("upload-%d", len(m.uploads))
	return &models.UploadedFile{ID: id, ViewLink: "mock://view/" + id}, nil
}

var _ storage.RemoteStore = (*MockRemoteStore)(nil)
