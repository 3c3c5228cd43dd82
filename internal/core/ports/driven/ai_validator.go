package driven

import "github.com/custodia-labs/rfpvault/internal/core/domain"

// AIConfigValidator checks model settings against the real backends before
// they are used for ingestion. A provider that needs no model (regex-only
// recognition, no embeddings) validates as nil.
type AIConfigValidator interface {
	ValidateEmbedding(cfg *domain.EmbeddingSettings) error
	ValidateNER(cfg *domain.NERSettings) error
}
