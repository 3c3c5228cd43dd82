package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
)

// Ensure ProgressStore implements the interface.
var _ driven.ProgressStore = (*ProgressStore)(nil)

// ProgressStore is an in-memory implementation of driven.ProgressStore.
type ProgressStore struct {
	mu       sync.RWMutex
	progress map[string]domain.Progress
}

// NewProgressStore creates a new in-memory progress store.
func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		progress: make(map[string]domain.Progress),
	}
}

// Set records the progress of a document.
func (s *ProgressStore) Set(_ context.Context, progress domain.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[progress.DocumentID] = progress
	return nil
}

// Get returns the progress of a document.
func (s *ProgressStore) Get(_ context.Context, documentID string) (*domain.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.progress[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// Delete removes the progress of a document.
func (s *ProgressStore) Delete(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.progress, documentID)
	return nil
}
