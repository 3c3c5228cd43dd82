package driving

import (
	"context"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

// UploadRequest carries an uploaded file into the ingestion pipeline.
type UploadRequest struct {
	// ProjectID is the owning tender project.
	ProjectID string

	// Category classifies the document.
	Category domain.Category

	// Filename is the original filename; its extension selects the extractor.
	Filename string

	// Content is the raw file bytes.
	Content []byte
}

// IngestionService turns uploaded files into anonymized, indexed chunks.
type IngestionService interface {
	// Upload stores the file and creates a PENDING document.
	Upload(ctx context.Context, req UploadRequest) (*domain.Document, error)

	// Process runs the ingestion pipeline for a document and blocks until it
	// reaches a terminal state. Pipeline failures are recorded on the document
	// and in its progress rather than returned; the returned error reports why
	// the run could not start (unknown document, run already active).
	Process(ctx context.Context, documentID string) error

	// Start launches Process in the background and returns immediately.
	Start(ctx context.Context, documentID string) error

	// Progress returns the latest reported step of a document.
	Progress(ctx context.Context, documentID string) (*domain.Progress, error)

	// Wait blocks until every background run has finished.
	Wait()
}
