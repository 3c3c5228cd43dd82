// Package legacy recognises pre-2007 binary Office formats, which are
// accepted for upload but have no text extractor.
package legacy

import (
	"bytes"
	"context"
	"fmt"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// oleSignature starts every OLE2 compound file (.doc, .xls).
var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Normaliser handles legacy .doc and .xls files.
type Normaliser struct{}

// New creates a new legacy format normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedFileTypes returns the file types this normaliser handles.
func (n *Normaliser) SupportedFileTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypeDOC, domain.FileTypeXLS}
}

// Normalise always fails: no text is extracted from legacy binary formats.
func (n *Normaliser) Normalise(_ context.Context, content []byte) (*driven.NormaliseResult, error) {
	if !IsCompoundFile(content) {
		return nil, fmt.Errorf("%w: not an OLE2 compound file", domain.ErrInvalidInput)
	}
	return nil, fmt.Errorf("%w: legacy binary format", domain.ErrUnsupportedType)
}

// IsCompoundFile reports whether content carries the OLE2 signature.
func IsCompoundFile(content []byte) bool {
	return bytes.HasPrefix(content, oleSignature)
}
