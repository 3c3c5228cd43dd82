package mcp

import (
	"github.com/custodia-labs/rfpvault/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides retrieval over anonymized chunks.
	Search driving.SearchService

	// Anonymization converts text to and from placeholders.
	Anonymization driving.AnonymizationService

	// Document lists and reads documents. Optional.
	Document driving.DocumentService

	// Ingestion reports processing progress. Optional.
	Ingestion driving.IngestionService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Anonymization == nil {
		return ErrMissingAnonymizationService
	}
	return nil
}
