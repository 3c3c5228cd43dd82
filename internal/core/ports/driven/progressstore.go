package driven

import (
	"context"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

// ProgressStore persists the latest ingestion step per document.
// Writes are last-write-wins.
type ProgressStore interface {
	// Set records the progress of a document, replacing any previous value.
	Set(ctx context.Context, progress domain.Progress) error

	// Get returns the progress of a document or domain.ErrNotFound.
	Get(ctx context.Context, documentID string) (*domain.Progress, error)

	// Delete removes the progress of a document.
	Delete(ctx context.Context, documentID string) error
}
