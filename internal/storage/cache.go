package storage

import (
	"all-me-match/pkg/models"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

type folderKey struct {
	name     string
	parentID string
}

// DirectoryCache memoizes folder resolution and image listings for the lifetime of the process.
// Entries never expire; not-found results and remote failures are never stored.
type DirectoryCache struct {
	store RemoteStore

	mu      sync.RWMutex
	folders map[folderKey]string
	images  map[string][]models.ImageRef

	// Concurrent misses for the same key share one remote call
	inflight singleflight.Group

	folderHits   atomic.Int64
	folderMisses atomic.Int64
	imageHits    atomic.Int64
	imageMisses  atomic.Int64
	remoteCalls  atomic.Int64
}

// NewDirectoryCache creates an empty cache in front of the given store
func NewDirectoryCache(store RemoteStore) *DirectoryCache {
	return &DirectoryCache{
		store:   store,
		folders: make(map[folderKey]string),
		images:  make(map[string][]models.ImageRef),
	}
}

// ResolveFolderID returns the ID of the folder called name directly under parentID.
// Returns ErrFolderNotFound when it does not exist, or an error wrapping ErrRemoteUnavailable.
func (c *DirectoryCache) ResolveFolderID(ctx context.Context, name, parentID string) (string, error) {
	key := folderKey{name: name, parentID: parentID}
	if id, ok := c.cachedFolder(key); ok {
		c.folderHits.Add(1)
		return id, nil
	}
	c.folderMisses.Add(1)

	v, err := c.do(ctx, "folder\x00"+parentID+"\x00"+name, func(ctx context.Context) (any, error) {
		// An earlier flight may have filled the entry between our miss and now
		if id, ok := c.cachedFolder(key); ok {
			return id, nil
		}

		c.remoteCalls.Add(1)
		folder, err := c.store.FindFolder(ctx, name, parentID)
		if err != nil {
			if errors.Is(err, ErrFolderNotFound) {
				return "", ErrFolderNotFound
			}
			return "", fmt.Errorf("%w: resolving folder %q: %w", ErrRemoteUnavailable, name, err)
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if existing, ok := c.folders[key]; ok {
			return existing, nil
		}
		c.folders[key] = folder.ID
		slog.Debug("cached folder", "name", name, "parent_id", parentID, "folder_id", folder.ID)
		return folder.ID, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// ListImages returns every image directly inside folderID, in the store's listing order.
// The returned slice is a copy and may be modified by the caller.
func (c *DirectoryCache) ListImages(ctx context.Context, folderID string) ([]models.ImageRef, error) {
	if images, ok := c.cachedImages(folderID); ok {
		c.imageHits.Add(1)
		return slices.Clone(images), nil
	}
	c.imageMisses.Add(1)

	v, err := c.do(ctx, "images\x00"+folderID, func(ctx context.Context) (any, error) {
		if images, ok := c.cachedImages(folderID); ok {
			return images, nil
		}

		c.remoteCalls.Add(1)
		images, err := c.store.ListImages(ctx, folderID)
		if err != nil {
			return nil, fmt.Errorf("%w: listing images in %s: %w", ErrRemoteUnavailable, folderID, err)
		}
		if images == nil {
			images = []models.ImageRef{}
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if existing, ok := c.images[folderID]; ok {
			return existing, nil
		}
		c.images[folderID] = images
		slog.Info("cached image listing", "folder_id", folderID, "images", len(images))
		return images, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]models.ImageRef)), nil
}

// Stats returns counters describing cache effectiveness
func (c *DirectoryCache) Stats() CacheStats {
	c.mu.RLock()
	folders, listings := len(c.folders), len(c.images)
	c.mu.RUnlock()

	return CacheStats{
		FolderHits:   c.folderHits.Load(),
		FolderMisses: c.folderMisses.Load(),
		ImageHits:    c.imageHits.Load(),
		ImageMisses:  c.imageMisses.Load(),
		RemoteCalls:  c.remoteCalls.Load(),
		Folders:      folders,
		Listings:     listings,
	}
}

func (c *DirectoryCache) cachedFolder(key folderKey) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.folders[key]
	return id, ok
}

func (c *DirectoryCache) cachedImages(folderID string) ([]models.ImageRef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	images, ok := c.images[folderID]
	return images, ok
}

// do runs fn once per key across concurrent callers. The shared call does not observe
// caller cancellation; each caller stops waiting when its own context is done.
func (c *DirectoryCache) do(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(key, func() (any, error) {
		return fn(detached)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}
