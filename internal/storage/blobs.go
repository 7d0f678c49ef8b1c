// Package storage is the blob-storage boundary used for avatar files.
package storage

import (
	"context"
	"io"
)

// Blobs stores and deletes binary assets and addresses them by URL.
type Blobs interface {
	Store(ctx context.Context, name string, r io.Reader) (url string, err error)
	Delete(ctx context.Context, url string) error
}
