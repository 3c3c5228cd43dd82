package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
)

// Ensure MappingStore implements the interface.
var _ driven.MappingStore = (*MappingStore)(nil)

// MappingStore is an in-memory implementation of driven.MappingStore.
type MappingStore struct {
	mu       sync.RWMutex
	projects map[string][]domain.EntityMapping
}

// NewMappingStore creates a new in-memory mapping store.
func NewMappingStore() *MappingStore {
	return &MappingStore{
		projects: make(map[string][]domain.EntityMapping),
	}
}

// List returns every mapping of a project in insertion order.
func (s *MappingStore) List(_ context.Context, projectID string) ([]domain.EntityMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.EntityMapping, len(s.projects[projectID]))
	copy(result, s.projects[projectID])
	return result, nil
}

// CountByType returns the number of mappings per entity type.
func (s *MappingStore) CountByType(_ context.Context, projectID string) (map[domain.EntityType]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.EntityType]int)
	for _, m := range s.projects[projectID] {
		counts[m.EntityType]++
	}
	return counts, nil
}

// Insert persists new mappings atomically.
func (s *MappingStore) Insert(_ context.Context, mappings []domain.EntityMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	type key struct{ project, value string }
	originals := make(map[key]bool)
	placeholders := make(map[key]bool)
	for project, existing := range s.projects {
		for _, m := range existing {
			originals[key{project, m.OriginalValue}] = true
			placeholders[key{project, m.Placeholder}] = true
		}
	}
	for _, m := range mappings {
		if m.ProjectID == "" || m.OriginalValue == "" || m.Placeholder == "" {
			return domain.ErrInvalidInput
		}
		ok := key{m.ProjectID, m.OriginalValue}
		pk := key{m.ProjectID, m.Placeholder}
		if originals[ok] || placeholders[pk] {
			return domain.ErrAlreadyExists
		}
		originals[ok] = true
		placeholders[pk] = true
	}

	for _, m := range mappings {
		s.projects[m.ProjectID] = append(s.projects[m.ProjectID], m)
	}
	return nil
}

// SetActive enables or disables the mapping of an original value.
func (s *MappingStore) SetActive(_ context.Context, projectID, originalValue string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects[projectID] {
		if s.projects[projectID][i].OriginalValue == originalValue {
			s.projects[projectID][i].Active = active
			return nil
		}
	}
	return domain.ErrNotFound
}

// DeleteProject removes every mapping of a project.
func (s *MappingStore) DeleteProject(_ context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, projectID)
	return nil
}
