package driven

import "context"

// BlobStore persists uploaded files and extracted images.
type BlobStore interface {
	// Put writes data under key and returns the storage path.
	Put(ctx context.Context, key string, data []byte) (string, error)

	// Get reads the data stored at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Delete removes the data stored at path. Missing paths are not an error.
	Delete(ctx context.Context, path string) error

	// DeletePrefix removes every blob under a key prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}
