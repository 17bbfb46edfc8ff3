// Package filestore provides object storage for raw dataset payloads.
//
// Backends: local filesystem (default), in-memory (tests), and S3/MinIO.
// Datasets reference objects by an opaque storage key; the service never
// serves raw bytes itself when the backend can hand out a presigned URL.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/statboard/statboard/internal/config"
)

// ErrNotFound is returned when no object exists under the given key.
var ErrNotFound = errors.New("object not found")

// ErrSignedURLUnsupported is returned by backends that cannot mint download
// URLs. Callers should fall back to streaming the object content directly.
var ErrSignedURLUnsupported = errors.New("signed URLs not supported by this backend")

// Store is the interface for pluggable object storage backends.
type Store interface {
	// Put stores data under key, overwriting any existing object.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get returns the raw object bytes, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the object, or returns ErrNotFound.
	Delete(ctx context.Context, key string) error

	// SignedURL returns a time-limited download URL for the object, or
	// ErrSignedURLUnsupported.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// New creates the Store selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "filesystem":
		return NewFilesystem(cfg.BaseDir)
	case "memory":
		return NewMemory(), nil
	case "s3":
		return NewS3(ctx, S3Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Prefix:   cfg.S3Prefix,
			Endpoint: cfg.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
