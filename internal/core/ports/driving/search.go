package driving

import (
	"context"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

// SearchService provides retrieval over a project's indexed chunks.
type SearchService interface {
	// Search returns the chunks most similar to query, highest score first.
	// Backend failures yield an empty result rather than an error.
	Search(ctx context.Context, projectID, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
