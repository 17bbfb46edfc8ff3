package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// compile-time check
var _ Store = (*Filesystem)(nil)

// objectMetadata is the on-disk sidecar stored next to each object.
type objectMetadata struct {
	Key         string    `json:"key"`
	ContentType string    `json:"content_type"`
	Bytes       int64     `json:"bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// Filesystem implements Store backed by a local directory.
//
// Layout:
//
//	<baseDir>/<key>/content        — raw object bytes
//	<baseDir>/<key>/metadata.json  — JSON metadata sidecar
type Filesystem struct {
	baseDir string
}

// NewFilesystem creates a filesystem-backed Store, creating baseDir if it
// does not exist.
func NewFilesystem(baseDir string) (*Filesystem, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create base dir %s: %w", baseDir, err)
	}
	return &Filesystem{baseDir: baseDir}, nil
}

// Put writes content and metadata to disk atomically (temp file + rename).
func (f *Filesystem) Put(_ context.Context, key string, data []byte, contentType string) error {
	dir := filepath.Join(f.baseDir, key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}

	contentPath := filepath.Join(dir, "content")
	tmpContent := contentPath + ".tmp"
	if err := os.WriteFile(tmpContent, data, 0o644); err != nil {
		return fmt.Errorf("write content: %w", err)
	}
	if err := os.Rename(tmpContent, contentPath); err != nil {
		return fmt.Errorf("rename content: %w", err)
	}

	meta := objectMetadata{
		Key:         key,
		ContentType: contentType,
		Bytes:       int64(len(data)),
		CreatedAt:   time.Now().UTC(),
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	metaPath := filepath.Join(dir, "metadata.json")
	tmpMeta := metaPath + ".tmp"
	if err := os.WriteFile(tmpMeta, metaBytes, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := os.Rename(tmpMeta, metaPath); err != nil {
		return fmt.Errorf("rename metadata: %w", err)
	}

	return nil
}

// Get returns the raw object bytes.
func (f *Filesystem) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(f.baseDir, key, "content"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("read content: %w", err)
	}
	return data, nil
}

// Delete removes the object directory and all its contents.
func (f *Filesystem) Delete(_ context.Context, key string) error {
	dir := filepath.Join(f.baseDir, key)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("object %s: %w", key, ErrNotFound)
		}
		return fmt.Errorf("stat object dir: %w", err)
	}
	return os.RemoveAll(dir)
}

// SignedURL is unsupported for the filesystem backend.
func (f *Filesystem) SignedURL(context.Context, string, time.Duration) (string, error) {
	return "", ErrSignedURLUnsupported
}

// Close is a no-op for the filesystem store.
func (f *Filesystem) Close(context.Context) error {
	return nil
}
