package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/rfpvault/internal/adapters/driven/vector"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory brute-force implementation of driven.VectorIndex.
type VectorIndex struct {
	mu          sync.RWMutex
	collections map[string]map[string]driven.VectorRecord
}

// NewVectorIndex creates a new in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		collections: make(map[string]map[string]driven.VectorRecord),
	}
}

// Upsert inserts or replaces records in a collection.
func (v *VectorIndex) Upsert(_ context.Context, collection string, records []driven.VectorRecord) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	c, ok := v.collections[collection]
	if !ok {
		c = make(map[string]driven.VectorRecord)
		v.collections[collection] = c
	}
	for _, r := range records {
		emb := make([]float32, len(r.Embedding))
		copy(emb, r.Embedding)
		r.Embedding = emb
		c[r.ID] = r
	}
	return nil
}

// Query returns the k records nearest to embedding.
func (v *VectorIndex) Query(
	_ context.Context, collection string, embedding []float32, k int, filter driven.VectorFilter,
) ([]driven.VectorHit, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	hits := make([]driven.VectorHit, 0)
	for id, r := range v.collections[collection] {
		if !filter.Matches(r.Metadata) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ID:       id,
			Content:  r.Content,
			Metadata: r.Metadata,
			Distance: vector.CosineDistance(embedding, r.Embedding),
		})
	}
	return vector.TopK(hits, k), nil
}

// DeleteWhere removes records matching the filter.
func (v *VectorIndex) DeleteWhere(_ context.Context, collection string, filter driven.VectorFilter) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for id, r := range v.collections[collection] {
		if filter.Matches(r.Metadata) {
			delete(v.collections[collection], id)
		}
	}
	return nil
}

// DeleteCollection drops a collection.
func (v *VectorIndex) DeleteCollection(_ context.Context, collection string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.collections, collection)
	return nil
}

// Count returns the number of records in a collection.
func (v *VectorIndex) Count(collection string) int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.collections[collection])
}

// Close is a no-op for the memory index.
func (v *VectorIndex) Close() error {
	return nil
}
