package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore keeps blobs in memory. Paths are the keys themselves.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string][]byte)}
}

// Put stores data under key.
func (b *BlobStore) Put(_ context.Context, key string, data []byte) (string, error) {
	if key == "" {
		return "", domain.ErrInvalidInput
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	b.blobs[key] = buf
	return key, nil
}

// Get reads the data stored at path.
func (b *BlobStore) Get(_ context.Context, path string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.blobs[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

// Delete removes the data stored at path.
func (b *BlobStore) Delete(_ context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blobs, path)
	return nil
}

// DeletePrefix removes every blob under a key prefix.
func (b *BlobStore) DeletePrefix(_ context.Context, prefix string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for key := range b.blobs {
		if strings.HasPrefix(key, prefix) {
			delete(b.blobs, key)
		}
	}
	return nil
}

// Len returns the number of stored blobs.
func (b *BlobStore) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.blobs)
}
