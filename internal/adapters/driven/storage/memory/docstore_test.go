package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

func TestDocumentStore_SaveAndGet(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc := &domain.Document{
		ID:               "doc-1",
		ProjectID:        "proj-1",
		Category:         domain.CategoryOldRFP,
		OriginalFilename: "ao.pdf",
		Status:           domain.StatusPending,
	}
	require.NoError(t, store.SaveDocument(ctx, doc))

	got, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "ao.pdf", got.OriginalFilename)

	_, err = store.GetDocument(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, store.SaveDocument(ctx, &domain.Document{}), domain.ErrInvalidInput)
}

func TestDocumentStore_UpdateStatus(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	_ = store.SaveDocument(ctx, &domain.Document{ID: "doc-1", Status: domain.StatusProcessing})

	require.NoError(t, store.UpdateStatus(ctx, "doc-1", domain.StatusFailed, "boom"))

	got, _ := store.GetDocument(ctx, "doc-1")
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.Equal(t, "boom", got.Error)
	assert.ErrorIs(t, store.UpdateStatus(ctx, "missing", domain.StatusFailed, ""), domain.ErrNotFound)
}

func TestDocumentStore_ListDocuments_ByProjectOldestFirst(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	base := time.Now()

	_ = store.SaveDocument(ctx, &domain.Document{ID: "b", ProjectID: "p1", CreatedAt: base.Add(time.Second)})
	_ = store.SaveDocument(ctx, &domain.Document{ID: "a", ProjectID: "p1", CreatedAt: base})
	_ = store.SaveDocument(ctx, &domain.Document{ID: "c", ProjectID: "p2", CreatedAt: base})

	docs, err := store.ListDocuments(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "b", docs[1].ID)

	empty, err := store.ListDocuments(ctx, "none")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDocumentStore_ChunksOrderedByIndex(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
		{ID: "c2", DocumentID: "doc-1", ChunkIndex: 2},
		{ID: "c0", DocumentID: "doc-1", ChunkIndex: 0},
		{ID: "c1", DocumentID: "doc-1", ChunkIndex: 1},
	}))

	chunks, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, i, c.ChunkIndex)
	}

	none, err := store.GetChunks(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDocumentStore_DeleteDocumentCascades(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	_ = store.SaveDocument(ctx, &domain.Document{ID: "doc-1"})
	_ = store.SaveChunks(ctx, []domain.Chunk{{ID: "c0", DocumentID: "doc-1"}})
	_ = store.SaveImages(ctx, []domain.DocumentImage{{ID: "i0", DocumentID: "doc-1"}})

	require.NoError(t, store.DeleteDocument(ctx, "doc-1"))

	_, err := store.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	chunks, _ := store.GetChunks(ctx, "doc-1")
	assert.Empty(t, chunks)
	images, _ := store.GetImages(ctx, "doc-1")
	assert.Empty(t, images)
}
