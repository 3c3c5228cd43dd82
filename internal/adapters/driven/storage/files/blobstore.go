// Package files stores uploaded documents and extracted images on the local filesystem.
package files

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// UploadsDir is the uploads directory name inside the data directory.
const UploadsDir = "uploads"

// BlobStore writes blobs under a root directory. Keys are slash-separated
// paths relative to the root; returned paths are absolute.
type BlobStore struct {
	root string
}

// NewBlobStore creates a blob store rooted at root.
func NewBlobStore(root string) (*BlobStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving blob root: %w", err)
	}
	if err := os.MkdirAll(abs, 0700); err != nil {
		return nil, fmt.Errorf("creating blob root: %w", err)
	}
	return &BlobStore{root: abs}, nil
}

// Root returns the absolute root directory.
func (b *BlobStore) Root() string {
	return b.root
}

// Put writes data under key and returns the absolute file path.
func (b *BlobStore) Put(_ context.Context, key string, data []byte) (string, error) {
	path, err := b.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("creating blob directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("writing blob: %w", err)
	}
	return path, nil
}

// Get reads the data stored at path.
func (b *BlobStore) Get(_ context.Context, path string) ([]byte, error) {
	path, err := b.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading blob: %w", err)
	}
	return data, nil
}

// Delete removes the data stored at path. Missing files are not an error.
func (b *BlobStore) Delete(_ context.Context, path string) error {
	path, err := b.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting blob: %w", err)
	}
	return nil
}

// DeletePrefix removes the directory a key prefix names.
func (b *BlobStore) DeletePrefix(_ context.Context, prefix string) error {
	path, err := b.resolve(strings.TrimSuffix(prefix, "/"))
	if err != nil {
		return err
	}
	if path == b.root {
		return fmt.Errorf("%w: refusing to delete blob root", domain.ErrInvalidInput)
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("deleting blobs: %w", err)
	}
	return nil
}

// resolve maps a key or an absolute path to a path inside the root.
func (b *BlobStore) resolve(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: empty blob key", domain.ErrInvalidInput)
	}
	var path string
	if filepath.IsAbs(key) {
		path = filepath.Clean(key)
	} else {
		path = filepath.Join(b.root, filepath.FromSlash(key))
	}
	rel, err := filepath.Rel(b.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: blob path %q escapes root", domain.ErrInvalidInput, key)
	}
	return path, nil
}
