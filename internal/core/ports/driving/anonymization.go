package driving

import (
	"context"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

// AnonymizationService pseudonymizes text against a project's entity mappings
// and restores placeholders in generated text.
type AnonymizationService interface {
	// AnonymizeText replaces detected sensitive values in text with placeholders.
	AnonymizeText(ctx context.Context, projectID, text string) (string, error)

	// AnonymizeBatch anonymizes many texts against one shared mapping set.
	// The i-th output corresponds to the i-th input.
	AnonymizeBatch(ctx context.Context, projectID string, texts []string) ([]string, error)

	// DeanonymizeText restores original values for every placeholder in text.
	DeanonymizeText(ctx context.Context, projectID, text string) (string, error)

	// MappingReport returns the project's mappings grouped by entity type.
	MappingReport(ctx context.Context, projectID string) (*domain.MappingReport, error)

	// SetMappingActive enables or disables the mapping of an original value.
	SetMappingActive(ctx context.Context, projectID, originalValue string, active bool) error
}
