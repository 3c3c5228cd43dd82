package domain

// DefaultTopK is the number of results returned when none is requested.
const DefaultTopK = 5

// SearchOptions configures a retrieval query.
type SearchOptions struct {
	// TopK is the maximum number of results.
	TopK int

	// Category restricts results to chunks of one document category.
	// Empty means all categories.
	Category Category
}

// SearchResult represents a single retrieved chunk.
type SearchResult struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the parent document.
	DocumentID string

	// DocumentName is the original filename of the parent document.
	DocumentName string

	// Category is the category of the parent document.
	Category Category

	// PageNumber is the page the chunk came from, 0 when unknown.
	PageNumber int

	// SectionTitle is the heading of the page the chunk came from.
	SectionTitle string

	// Content is the anonymized chunk text.
	Content string

	// Score is the similarity score, 1 - cosine distance.
	Score float64
}
