package driving

import (
	"context"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

// DocumentService manages documents within projects.
type DocumentService interface {
	// List returns all documents of a project.
	List(ctx context.Context, projectID string) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// GetChunks returns the chunks of a document in index order.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetImages returns the images extracted from a document.
	GetImages(ctx context.Context, documentID string) ([]domain.DocumentImage, error)

	// Delete removes a document with its chunks, images, stored files and vectors.
	Delete(ctx context.Context, documentID string) error

	// DeleteProject removes every document, mapping and vector of a project.
	DeleteProject(ctx context.Context, projectID string) error
}
