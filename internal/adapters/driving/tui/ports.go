// Package tui provides an interactive terminal user interface for rfpvault.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/rfpvault/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces used by the TUI.
type Ports struct {
	// Document lists documents and their chunks.
	Document driving.DocumentService

	// Ingestion reports ingestion progress.
	Ingestion driving.IngestionService

	// Search runs semantic search. Optional; the search view is hidden without it.
	Search driving.SearchService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	if p.Ingestion == nil {
		return ErrMissingIngestionService
	}
	return nil
}
