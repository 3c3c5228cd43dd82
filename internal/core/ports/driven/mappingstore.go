package driven

import (
	"context"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

// MappingStore persists project-scoped entity mappings.
// It is the single source of truth for original value to placeholder pairs.
type MappingStore interface {
	// List returns every mapping of a project, active or not.
	List(ctx context.Context, projectID string) ([]domain.EntityMapping, error)

	// CountByType returns the number of persisted mappings per entity type.
	// Counters for new placeholders start from these values.
	CountByType(ctx context.Context, projectID string) (map[domain.EntityType]int, error)

	// Insert persists new mappings atomically. Inserting an original value
	// or placeholder that already exists in the project returns
	// domain.ErrAlreadyExists and persists nothing.
	Insert(ctx context.Context, mappings []domain.EntityMapping) error

	// SetActive enables or disables the mapping of an original value.
	SetActive(ctx context.Context, projectID, originalValue string, active bool) error

	// DeleteProject removes every mapping of a project.
	DeleteProject(ctx context.Context, projectID string) error
}
