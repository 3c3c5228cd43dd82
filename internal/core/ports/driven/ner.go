package driven

import (
	"context"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

// EntityModel is a learned named-entity recognition model.
// This is an optional service - when nil, detection uses regex rules only.
//
// Predict is batched: one call processes every text, so callers pack all
// inference windows of a unit of work into a single invocation.
type EntityModel interface {
	// Predict returns, for each input text, the spans whose label is in labels
	// and whose confidence is at least threshold. Offsets are relative to the
	// corresponding input text.
	Predict(ctx context.Context, texts []string, labels []string, threshold float64) ([][]domain.EntitySpan, error)

	// Name returns the model identifier for logging.
	Name() string

	// Close releases resources.
	Close() error
}
