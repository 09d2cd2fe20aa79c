package storage

import (
	"context"
	"time"
)

// DefaultPresignedURLExpiry bounds how long a snapshot download link lives.
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage abstracts the object store holding detection snapshots.
type FileStorage interface {
	// Upload stores an object under the given key.
	Upload(ctx context.Context, objectKey string, contentType string, data []byte) error
	// GeneratePresignedDownloadURL creates a temporary URL for downloading (GET).
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)
	// DeleteObject removes an object.
	DeleteObject(ctx context.Context, objectKey string) error
}
