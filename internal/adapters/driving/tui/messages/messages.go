// Package messages holds the tea.Msg types the TUI views exchange. Views
// never call each other; they return commands producing these messages and
// the app routes them.
package messages

import "github.com/custodia-labs/rfpvault/internal/core/domain"

// ViewType names a screen of the app.
type ViewType int

const (
	ViewMenu ViewType = iota
	ViewSearch
	ViewHelp
	ViewDocuments
	ViewChunks
	ViewProgress
)

var viewNames = [...]string{
	ViewMenu:      "menu",
	ViewSearch:    "search",
	ViewHelp:      "help",
	ViewDocuments: "documents",
	ViewChunks:    "chunks",
	ViewProgress:  "progress",
}

func (v ViewType) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return "unknown"
	}
	return viewNames[v]
}

// ViewChanged switches the active screen.
type ViewChanged struct{ View ViewType }

// ErrorOccurred is shown by whichever view is active.
type ErrorOccurred struct{ Err error }

// Search.

type SearchCompleted struct {
	Results []domain.SearchResult
	Err     error
}

// Documents and chunks. Loads carry the id they were issued for so a view
// can drop answers to a request it has moved past.

type DocumentsLoaded struct {
	ProjectID string
	Documents []domain.Document
	Err       error
}

// DocumentSelected opens the chunk view on Document.
type DocumentSelected struct{ Document domain.Document }

type DocumentDeleted struct {
	DocumentID string
	Err        error
}

type ChunksLoaded struct {
	DocumentID string
	Chunks     []domain.Chunk
	Err        error
}

// Ingestion progress. ProgressTick schedules the next poll; polling stops on
// a terminal step or an error.

type ProgressRequested struct{ DocumentID string }

type ProgressTick struct{ DocumentID string }

type ProgressUpdated struct {
	DocumentID string
	Progress   *domain.Progress
	Err        error
}
