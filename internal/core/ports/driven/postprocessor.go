package driven

import (
	"context"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

// Chunker splits the extraction result of a document into chunks.
type Chunker interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process returns the chunks of a document in emission order with dense
	// chunk indexes. Chunks carry raw content only; anonymization happens later.
	Process(ctx context.Context, doc *domain.Document, extraction *NormaliseResult) ([]domain.Chunk, error)
}
