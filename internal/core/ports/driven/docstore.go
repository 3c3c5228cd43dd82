package driven

import (
	"context"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

// DocumentStore persists documents, chunks and extracted images.
// Backed by SQLite for metadata storage.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// UpdateStatus sets the processing status and failure message of a document.
	UpdateStatus(ctx context.Context, id string, status domain.ProcessingStatus, errMsg string) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns documents for a project, oldest first.
	ListDocuments(ctx context.Context, projectID string) ([]domain.Document, error)

	// DeleteDocument removes a document, its chunks and its image rows.
	DeleteDocument(ctx context.Context, id string) error

	// SaveChunks stores chunks for a document.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetChunks retrieves all chunks for a document ordered by chunk index.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// SaveImages stores image rows for a document.
	SaveImages(ctx context.Context, images []domain.DocumentImage) error

	// GetImages retrieves all image rows for a document.
	GetImages(ctx context.Context, documentID string) ([]domain.DocumentImage, error)
}
