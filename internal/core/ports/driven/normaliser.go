package driven

import (
	"context"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

// Normaliser extracts text from one or more file formats.
type Normaliser interface {
	// SupportedFileTypes returns the file types this normaliser handles.
	SupportedFileTypes() []domain.FileType

	// Normalise extracts text from the file content.
	Normalise(ctx context.Context, content []byte) (*NormaliseResult, error)
}

// ImageExtractor is implemented by normalisers whose format embeds images.
type ImageExtractor interface {
	// ExtractImages returns images at least minSize pixels in both dimensions.
	ExtractImages(ctx context.Context, content []byte, minSize int) ([]domain.ExtractedImage, error)
}

// NormaliseResult contains the output of text extraction.
// Pages is nil when the format has no page structure.
type NormaliseResult struct {
	// Text is the full extracted text.
	Text string

	// Pages holds per-page text and headings for paged formats.
	Pages []domain.Page

	// PageCount is the number of pages, 0 when unknown.
	PageCount int
}
