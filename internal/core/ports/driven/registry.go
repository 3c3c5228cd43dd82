package driven

import (
	"context"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

// NormaliserRegistry selects the appropriate normaliser for a file type.
type NormaliserRegistry interface {
	// Normalise extracts text using the normaliser registered for fileType.
	// Returns domain.ErrUnsupportedType when none is registered.
	Normalise(ctx context.Context, fileType domain.FileType, content []byte) (*NormaliseResult, error)

	// ExtractImages extracts images when the registered normaliser supports it.
	// Returns nil without error otherwise.
	ExtractImages(ctx context.Context, fileType domain.FileType, content []byte, minSize int) ([]domain.ExtractedImage, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedFileTypes returns all file types that can be normalised.
	SupportedFileTypes() []domain.FileType
}
