package driven

import "context"

// VectorIndex stores chunk embeddings in per-project collections and answers
// nearest-neighbour queries under cosine distance.
type VectorIndex interface {
	// Upsert inserts or replaces records in a collection, creating it if needed.
	Upsert(ctx context.Context, collection string, records []VectorRecord) error

	// Query returns the k records nearest to embedding, closest first.
	// Only records whose metadata matches every non-empty filter field are considered.
	Query(ctx context.Context, collection string, embedding []float32, k int, filter VectorFilter) ([]VectorHit, error)

	// DeleteWhere removes every record of a collection matching the filter.
	DeleteWhere(ctx context.Context, collection string, filter VectorFilter) error

	// DeleteCollection drops a collection and all of its records.
	DeleteCollection(ctx context.Context, collection string) error

	// Close releases resources.
	Close() error
}

// VectorMetadata is stored alongside each embedding.
type VectorMetadata struct {
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name"`
	Category     string `json:"category"`
	PageNumber   int    `json:"page_number"`
	SectionTitle string `json:"section_title"`
	ChunkIndex   int    `json:"chunk_index"`
}

// VectorRecord is one stored embedding.
type VectorRecord struct {
	// ID is the chunk ID.
	ID string

	// Embedding is the document-side vector.
	Embedding []float32

	// Content is the anonymized chunk text.
	Content string

	// Metadata describes the chunk origin.
	Metadata VectorMetadata
}

// VectorFilter restricts queries and deletions. Empty fields match everything.
type VectorFilter struct {
	DocumentID string
	Category   string
}

// Matches reports whether metadata satisfies the filter.
func (f VectorFilter) Matches(m VectorMetadata) bool {
	if f.DocumentID != "" && f.DocumentID != m.DocumentID {
		return false
	}
	if f.Category != "" && f.Category != m.Category {
		return false
	}
	return true
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ID is the matched chunk.
	ID string

	// Content is the stored chunk text.
	Content string

	// Metadata describes the chunk origin.
	Metadata VectorMetadata

	// Distance is the cosine distance (0 = identical direction).
	Distance float64
}
