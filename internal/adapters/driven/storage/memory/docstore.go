package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk
	images    map[string][]domain.DocumentImage
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
		images:    make(map[string][]domain.DocumentImage),
	}
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// UpdateStatus sets the processing status and failure message of a document.
func (s *DocumentStore) UpdateStatus(_ context.Context, id string, status domain.ProcessingStatus, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Status = status
	doc.Error = errMsg
	doc.UpdatedAt = time.Now().UTC()
	s.documents[id] = doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns documents for a project, oldest first.
func (s *DocumentStore) ListDocuments(_ context.Context, projectID string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Document, 0)
	for id := range s.documents {
		doc := s.documents[id]
		if doc.ProjectID == projectID {
			result = append(result, doc)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteDocument removes a document, its chunks and its image rows.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	delete(s.chunks, id)
	delete(s.images, id)
	return nil
}

// SaveChunks stores chunks, replacing those of the same documents.
func (s *DocumentStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	grouped := make(map[string][]domain.Chunk)
	for i := range chunks {
		grouped[chunks[i].DocumentID] = append(grouped[chunks[i].DocumentID], chunks[i])
	}
	for docID, docChunks := range grouped {
		s.chunks[docID] = docChunks
	}
	return nil
}

// GetChunks retrieves all chunks for a document ordered by chunk index.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks := make([]domain.Chunk, len(s.chunks[documentID]))
	copy(chunks, s.chunks[documentID])
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ChunkIndex < chunks[j].ChunkIndex
	})
	return chunks, nil
}

// SaveImages stores image rows for a document.
func (s *DocumentStore) SaveImages(_ context.Context, images []domain.DocumentImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range images {
		s.images[images[i].DocumentID] = append(s.images[images[i].DocumentID], images[i])
	}
	return nil
}

// GetImages retrieves all image rows for a document.
func (s *DocumentStore) GetImages(_ context.Context, documentID string) ([]domain.DocumentImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	images := make([]domain.DocumentImage, len(s.images[documentID]))
	copy(images, s.images[documentID])
	return images, nil
}
