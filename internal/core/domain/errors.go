package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown file type or provider.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrIngestionInProgress indicates an ingestion run is already active
	// for the same document.
	ErrIngestionInProgress = errors.New("ingestion in progress")

	// ErrInvalidTransition indicates a processing status change that the
	// document lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNoTextExtracted indicates extraction produced only whitespace.
	ErrNoTextExtracted = errors.New("no text extracted")

	// ErrModelUnavailable indicates the entity recognition model could not be loaded.
	// Detection degrades to regex rules only.
	ErrModelUnavailable = errors.New("entity model unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Indexing and semantic search are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
)
