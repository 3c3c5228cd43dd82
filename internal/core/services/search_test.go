package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfpvault/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

func searchFixture() (*domain.Document, []domain.Chunk) {
	doc := &domain.Document{
		ID:               "doc-1",
		ProjectID:        "p1",
		Category:         domain.CategoryOldResponse,
		OriginalFilename: "reponse_2023.docx",
	}
	chunks := []domain.Chunk{
		{ID: "c0", DocumentID: "doc-1", ChunkIndex: 0, AnonymizedContent: "hebergement cloud", PageNumber: 2, SectionTitle: "Architecture"},
		{ID: "c1", DocumentID: "doc-1", ChunkIndex: 1, AnonymizedContent: "planning projet"},
	}
	return doc, chunks
}

func TestCollectionName(t *testing.T) {
	assert.Equal(t, "project_abc", CollectionName("abc"))
}

func TestSearchService_IndexAndSearch(t *testing.T) {
	embedder := &mockEmbeddingService{vectors: map[string][]float32{
		"passage: hebergement cloud": {1, 0, 0},
		"passage: planning projet":   {0, 1, 0},
		"query: ou est le cloud":     {0.9, 0.1, 0},
	}}
	index := memory.NewVectorIndex()
	svc := NewSearchService(index, embedder)
	ctx := context.Background()

	doc, chunks := searchFixture()
	require.NoError(t, svc.Index(ctx, doc, chunks))
	assert.Equal(t, 2, index.Count("project_p1"))

	results, err := svc.Search(ctx, "p1", "ou est le cloud", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	top := results[0]
	assert.Equal(t, "c0", top.ChunkID)
	assert.Equal(t, "doc-1", top.DocumentID)
	assert.Equal(t, "reponse_2023.docx", top.DocumentName)
	assert.Equal(t, domain.CategoryOldResponse, top.Category)
	assert.Equal(t, 2, top.PageNumber)
	assert.Equal(t, "Architecture", top.SectionTitle)
	assert.Equal(t, "hebergement cloud", top.Content)
	assert.Greater(t, top.Score, results[1].Score)
	assert.LessOrEqual(t, top.Score, 1.0)
}

func TestSearchService_UsesAsymmetricPrefixes(t *testing.T) {
	embedder := &mockEmbeddingService{}
	svc := NewSearchService(memory.NewVectorIndex(), embedder, WithEmbeddingPrefixes("doc> ", "q> "))
	ctx := context.Background()

	doc, chunks := searchFixture()
	require.NoError(t, svc.Index(ctx, doc, chunks[:1]))
	_, _ = svc.Search(ctx, "p1", "cloud", domain.SearchOptions{})

	assert.Equal(t, []string{"doc> hebergement cloud", "q> cloud"}, embedder.embedded())
}

func TestSearchService_TopKAndCategory(t *testing.T) {
	svc := NewSearchService(memory.NewVectorIndex(), &mockEmbeddingService{})
	ctx := context.Background()

	doc, chunks := searchFixture()
	require.NoError(t, svc.Index(ctx, doc, chunks))

	one, err := svc.Search(ctx, "p1", "cloud", domain.SearchOptions{TopK: 1})
	require.NoError(t, err)
	assert.Len(t, one, 1)

	none, err := svc.Search(ctx, "p1", "cloud", domain.SearchOptions{Category: domain.CategoryNewRFP})
	require.NoError(t, err)
	assert.Empty(t, none)

	other, err := svc.Search(ctx, "p2", "cloud", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSearchService_FailuresYieldEmptyResults(t *testing.T) {
	ctx := context.Background()

	t.Run("vector backend error", func(t *testing.T) {
		svc := NewSearchService(&failingVectorIndex{}, &mockEmbeddingService{})
		results, err := svc.Search(ctx, "p1", "cloud", domain.SearchOptions{})
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("embedding error", func(t *testing.T) {
		svc := NewSearchService(memory.NewVectorIndex(), &mockEmbeddingService{err: errors.New("ollama down")})
		results, err := svc.Search(ctx, "p1", "cloud", domain.SearchOptions{})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("not configured", func(t *testing.T) {
		svc := NewSearchService(nil, nil)
		results, err := svc.Search(ctx, "p1", "cloud", domain.SearchOptions{})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("empty query", func(t *testing.T) {
		svc := NewSearchService(memory.NewVectorIndex(), &mockEmbeddingService{})
		results, err := svc.Search(ctx, "p1", "   ", domain.SearchOptions{})
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestSearchService_IndexPropagatesErrors(t *testing.T) {
	ctx := context.Background()
	doc, chunks := searchFixture()

	err := NewSearchService(&failingVectorIndex{}, &mockEmbeddingService{}).Index(ctx, doc, chunks)
	assert.ErrorIs(t, err, errVectorBackend)

	err = NewSearchService(memory.NewVectorIndex(), &mockEmbeddingService{err: errors.New("boom")}).Index(ctx, doc, chunks)
	assert.Error(t, err)

	assert.NoError(t, NewSearchService(nil, nil).Index(ctx, doc, chunks))
}

func TestSearchService_DeletesAreBestEffort(t *testing.T) {
	ctx := context.Background()

	failing := &failingVectorIndex{}
	svc := NewSearchService(failing, &mockEmbeddingService{})
	svc.DeleteByDocument(ctx, "p1", "doc-1")
	svc.DeleteProject(ctx, "p1")
	assert.Equal(t, 2, failing.deletes)

	index := memory.NewVectorIndex()
	svc = NewSearchService(index, &mockEmbeddingService{})
	doc, chunks := searchFixture()
	require.NoError(t, svc.Index(ctx, doc, chunks))

	svc.DeleteByDocument(ctx, "p1", "doc-1")
	assert.Equal(t, 0, index.Count("project_p1"))

	NewSearchService(nil, nil).DeleteProject(ctx, "p1")
}
