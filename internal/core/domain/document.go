package domain

import (
	"path/filepath"
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// Category classifies an uploaded document within a tender project.
type Category string

// Available document categories.
const (
	// CategoryOldRFP is a past call for tenders.
	CategoryOldRFP Category = "old_rfp"

	// CategoryOldResponse is a past response to a call for tenders.
	CategoryOldResponse Category = "old_response"

	// CategoryNewRFP is the call for tenders currently being answered.
	CategoryNewRFP Category = "new_rfp"
)

// IsValid returns true if the category is recognised.
func (c Category) IsValid() bool {
	switch c {
	case CategoryOldRFP, CategoryOldResponse, CategoryNewRFP:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// Description returns a human-readable description of the category.
func (c Category) Description() string {
	switch c {
	case CategoryOldRFP:
		return "Previous call for tenders"
	case CategoryOldResponse:
		return "Previous response"
	case CategoryNewRFP:
		return "Current call for tenders"
	default:
		return unknownDescription
	}
}

// FileType identifies the format of an uploaded file.
type FileType string

// Supported file types.
const (
	FileTypePDF   FileType = "pdf"
	FileTypeDOCX  FileType = "docx"
	FileTypeDOC   FileType = "doc"
	FileTypeXLSX  FileType = "xlsx"
	FileTypeXLS   FileType = "xls"
	FileTypePPTX  FileType = "pptx"
	FileTypeText  FileType = "txt"
	FileTypeMD    FileType = "md"
	FileTypeOther FileType = "other"
)

// DetectFileType maps a filename extension to a FileType.
// Unknown or missing extensions map to FileTypeOther.
func DetectFileType(filename string) FileType {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	switch ext {
	case "pdf":
		return FileTypePDF
	case "docx":
		return FileTypeDOCX
	case "doc":
		return FileTypeDOC
	case "xlsx":
		return FileTypeXLSX
	case "xls":
		return FileTypeXLS
	case "pptx":
		return FileTypePPTX
	case "txt", "text":
		return FileTypeText
	case "md", "markdown":
		return FileTypeMD
	default:
		return FileTypeOther
	}
}

// ProcessingStatus is the persisted lifecycle state of a document.
type ProcessingStatus string

// Processing states. PENDING -> PROCESSING -> {COMPLETED | FAILED}.
const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// IsTerminal returns true for COMPLETED and FAILED.
func (s ProcessingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether the lifecycle allows moving from s to next.
// A pending document may fail directly when the run cannot start.
func (s ProcessingStatus) CanTransition(next ProcessingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusFailed
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}

// String returns the string representation.
func (s ProcessingStatus) String() string {
	return string(s)
}

// Document is an uploaded file and its ingestion state.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// ProjectID is the tender project owning the document.
	ProjectID string

	// Category classifies the document (old_rfp, old_response, new_rfp).
	Category Category

	// OriginalFilename is the filename as uploaded.
	OriginalFilename string

	// StoredFilename is the name of the stored copy.
	StoredFilename string

	// FileType is derived from the original filename.
	FileType FileType

	// FileSize is the size of the upload in bytes.
	FileSize int64

	// FilePath is the location of the stored copy.
	FilePath string

	// Status is the ingestion lifecycle state.
	Status ProcessingStatus

	// PageCount is the number of pages found during extraction.
	PageCount int

	// ChunkCount is the number of chunks persisted.
	ChunkCount int

	// Error holds the failure message when Status is FAILED.
	Error string

	// CreatedAt is when the document was uploaded.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}

// Chunk represents a searchable unit within a document.
// Content is immutable once persisted; re-ingestion creates a new document.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// ChunkIndex is the dense 0-based position in emission order.
	ChunkIndex int

	// Content is the raw text of this chunk.
	Content string

	// AnonymizedContent is Content with sensitive values replaced by placeholders.
	AnonymizedContent string

	// PageNumber is the 1-based page of origin, 0 when pages are unknown.
	PageNumber int

	// SectionTitle is the first heading detected on the page of origin.
	SectionTitle string

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the chunk was persisted.
	CreatedAt time.Time
}

// Page is one page of extracted text.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Text is the page text.
	Text string

	// SectionTitles holds heading-like lines found on the page, in order.
	SectionTitles []string
}

// ExtractedImage is an image pulled out of a document before persistence.
type ExtractedImage struct {
	Data       []byte
	Ext        string
	Width      int
	Height     int
	PageNumber int
	Context    string
}

// DocumentImage is a persisted image extracted from a document.
type DocumentImage struct {
	ID             string
	DocumentID     string
	StoredFilename string
	FilePath       string
	PageNumber     int
	Context        string
	Width          int
	Height         int
	CreatedAt      time.Time
}
