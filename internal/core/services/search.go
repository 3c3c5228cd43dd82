package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driving"
	"github.com/custodia-labs/rfpvault/internal/logger"
)

var searchLog = logger.For("search")

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// embedBatchSize bounds the number of texts per embedding request.
const embedBatchSize = 32

// CollectionName returns the vector collection of a project.
func CollectionName(projectID string) string {
	return "project_" + projectID
}

// SearchService indexes anonymized chunks and retrieves them by semantic similarity.
type SearchService struct {
	vectorIndex      driven.VectorIndex
	embeddingService driven.EmbeddingService
	documentPrefix   string
	queryPrefix      string
}

// SearchOption configures a SearchService.
type SearchOption func(*SearchService)

// WithEmbeddingPrefixes sets the document-side and query-side text framing.
func WithEmbeddingPrefixes(document, query string) SearchOption {
	return func(s *SearchService) {
		s.documentPrefix = document
		s.queryPrefix = query
	}
}

// NewSearchService creates a new search service.
// The vectorIndex and embeddingService parameters are optional (can be nil);
// without both, indexing is skipped and searches return no results.
func NewSearchService(
	vectorIndex driven.VectorIndex,
	embeddingService driven.EmbeddingService,
	opts ...SearchOption,
) *SearchService {
	d := domain.DefaultAppSettings().Embedding
	s := &SearchService{
		vectorIndex:      vectorIndex,
		embeddingService: embeddingService,
		documentPrefix:   d.DocumentPrefix,
		queryPrefix:      d.QueryPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether both the vector index and embeddings are available.
func (s *SearchService) Enabled() bool {
	return s.vectorIndex != nil && s.embeddingService != nil
}

// Index embeds the anonymized content of chunks and stores them in the
// project collection. Errors are returned so the ingestion run can fail.
func (s *SearchService) Index(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if !s.Enabled() {
		searchLog.Warn("Indexing skipped for %s: vector search not configured", doc.ID)
		return nil
	}
	if len(chunks) == 0 {
		return nil
	}

	collection := CollectionName(doc.ProjectID)
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i := range batch {
			texts[i] = s.documentPrefix + batch[i].AnonymizedContent
		}
		embeddings, err := s.embeddingService.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}
		if len(embeddings) != len(batch) {
			return fmt.Errorf("embed chunks: got %d embeddings for %d chunks", len(embeddings), len(batch))
		}

		records := make([]driven.VectorRecord, len(batch))
		for i := range batch {
			records[i] = driven.VectorRecord{
				ID:        batch[i].ID,
				Embedding: embeddings[i],
				Content:   batch[i].AnonymizedContent,
				Metadata: driven.VectorMetadata{
					DocumentID:   doc.ID,
					DocumentName: doc.OriginalFilename,
					Category:     doc.Category.String(),
					PageNumber:   batch[i].PageNumber,
					SectionTitle: batch[i].SectionTitle,
					ChunkIndex:   batch[i].ChunkIndex,
				},
			}
		}
		if err := s.vectorIndex.Upsert(ctx, collection, records); err != nil {
			return fmt.Errorf("store vectors: %w", err)
		}
	}

	searchLog.Debug("Indexed %d chunks of %s into %s", len(chunks), doc.ID, collection)
	return nil
}

// Search returns the chunks most similar to query, highest score first.
// Backend failures are logged and yield an empty result.
func (s *SearchService) Search(
	ctx context.Context, projectID, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	searchLog.Debug("Project: %s, Query: %q", projectID, query)

	results := []domain.SearchResult{}
	query = strings.TrimSpace(query)
	if query == "" || projectID == "" {
		return results, nil
	}
	if !s.Enabled() {
		searchLog.Warn("Search unavailable: vector search not configured")
		return results, nil
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	embedding, err := s.embeddingService.Embed(ctx, s.queryPrefix+query)
	if err != nil {
		searchLog.Warn("Query embedding failed: %v", err)
		return results, nil
	}

	filter := driven.VectorFilter{Category: opts.Category.String()}
	hits, err := s.vectorIndex.Query(ctx, CollectionName(projectID), embedding, topK, filter)
	if err != nil {
		searchLog.Warn("Vector query failed: %v", err)
		return results, nil
	}

	for _, hit := range hits {
		results = append(results, domain.SearchResult{
			ChunkID:      hit.ID,
			DocumentID:   hit.Metadata.DocumentID,
			DocumentName: hit.Metadata.DocumentName,
			Category:     domain.Category(hit.Metadata.Category),
			PageNumber:   hit.Metadata.PageNumber,
			SectionTitle: hit.Metadata.SectionTitle,
			Content:      hit.Content,
			Score:        1 - hit.Distance,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	searchLog.Info("Final results: %d", len(results))
	return results, nil
}

// DeleteByDocument removes the vectors of one document. Best-effort.
func (s *SearchService) DeleteByDocument(ctx context.Context, projectID, documentID string) {
	if s.vectorIndex == nil {
		return
	}
	filter := driven.VectorFilter{DocumentID: documentID}
	if err := s.vectorIndex.DeleteWhere(ctx, CollectionName(projectID), filter); err != nil {
		searchLog.Warn("Vector cleanup for document %s failed: %v", documentID, err)
	}
}

// DeleteProject drops the vector collection of a project. Best-effort.
func (s *SearchService) DeleteProject(ctx context.Context, projectID string) {
	if s.vectorIndex == nil {
		return
	}
	if err := s.vectorIndex.DeleteCollection(ctx, CollectionName(projectID)); err != nil {
		searchLog.Warn("Vector cleanup for project %s failed: %v", projectID, err)
	}
}
