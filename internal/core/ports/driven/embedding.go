package driven

import "context"

// EmbeddingService turns text into vectors for the VectorIndex. It is
// optional: without one, chunks are stored but never indexed and search
// reports that it is unavailable.
//
// The service embeds exactly what it is given. The "passage: " and "query: "
// prefixes that e5 models expect are added by the caller.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the configured vector length; replies of another length
	// are rejected.
	Dimensions() int
	ModelName() string

	// Ping sends the smallest request the provider accepts.
	Ping(ctx context.Context) error
	Close() error
}
