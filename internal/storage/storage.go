package storage

import (
	"context"
	"io"

	"github.com/mbracken/njord/internal"
)

// Storage defines the interface for file storage operations.
// Implementations can use the local filesystem, S3, or any other backend.
type Storage interface {
	// Put stores a file and returns its URL for retrieval. The key should
	// be a unique path such as "products/<uuid>/image.jpg".
	Put(ctx context.Context, key string, content io.Reader, contentType string) (string, error)

	// Get retrieves a file by its key. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a file by its key. Deleting a missing file is a no-op.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL for a stored file.
	URL(key string) string

	// Exists checks whether a file exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)
}

// NewStorage creates a Storage implementation based on configuration.
func NewStorage(cfg internal.StorageConfig) (Storage, error) {
	switch cfg.Provider {
	case "local", "":
		return NewLocalStorage(cfg.LocalPath, cfg.LocalURL)
	case "s3":
		return NewS3Storage(S3Config{
			Region:      cfg.S3Region,
			AccessKeyID: cfg.S3AccessKeyID,
			SecretKey:   cfg.S3SecretKey,
			BucketName:  cfg.S3BucketName,
			Endpoint:    cfg.S3Endpoint,
			PublicURL:   cfg.S3PublicURL,
		})
	default:
		return nil, ErrUnknownProvider(cfg.Provider)
	}
}
