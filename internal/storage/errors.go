package storage

import "errors"

var (
	ErrFolderNotFound    = errors.New("folder not found")
	ErrRemoteUnavailable = errors.New("remote store unavailable")
)
