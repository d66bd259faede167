package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get when no object exists at the path.
var ErrNotFound = errors.New("storage: object not found")

// Storage stores photo originals and thumbnails under slash-separated relative paths.
type Storage interface {
	// Save writes content to path, replacing any existing object.
	// contentType may be empty when unknown.
	Save(ctx context.Context, path string, content io.Reader, size int64, contentType string) error

	// Get opens the object at path. The caller closes the reader.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the object at path. Missing objects are not an error.
	Delete(ctx context.Context, path string) error
}
