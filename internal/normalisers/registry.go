package normalisers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
	"github.com/custodia-labs/rfpvault/internal/normalisers/docx"
	"github.com/custodia-labs/rfpvault/internal/normalisers/legacy"
	"github.com/custodia-labs/rfpvault/internal/normalisers/markdown"
	"github.com/custodia-labs/rfpvault/internal/normalisers/pdf"
	"github.com/custodia-labs/rfpvault/internal/normalisers/plaintext"
	"github.com/custodia-labs/rfpvault/internal/normalisers/pptx"
	"github.com/custodia-labs/rfpvault/internal/normalisers/xlsx"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry maps file types to normalisers. The last registration for a
// file type wins.
type Registry struct {
	mu     sync.RWMutex
	byType map[domain.FileType]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[domain.FileType]driven.Normaliser)}
}

// NewDefaultRegistry creates a registry with every built-in normaliser.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(xlsx.New())
	r.Register(pptx.New())
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(legacy.New())
	return r
}

// Register adds a normaliser for each file type it supports.
func (r *Registry) Register(normaliser driven.Normaliser) {
	if normaliser == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ft := range normaliser.SupportedFileTypes() {
		r.byType[ft] = normaliser
	}
}

// Normalise extracts text with the normaliser registered for fileType.
func (r *Registry) Normalise(ctx context.Context, fileType domain.FileType, content []byte) (*driven.NormaliseResult, error) {
	n, ok := r.lookup(fileType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, fileType)
	}
	return n.Normalise(ctx, content)
}

// ExtractImages extracts images when the normaliser for fileType supports it.
func (r *Registry) ExtractImages(ctx context.Context, fileType domain.FileType, content []byte, minSize int) ([]domain.ExtractedImage, error) {
	n, ok := r.lookup(fileType)
	if !ok {
		return nil, nil
	}
	extractor, ok := n.(driven.ImageExtractor)
	if !ok {
		return nil, nil
	}
	return extractor.ExtractImages(ctx, content, minSize)
}

// SupportedFileTypes returns the registered file types in sorted order.
func (r *Registry) SupportedFileTypes() []domain.FileType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]domain.FileType, 0, len(r.byType))
	for ft := range r.byType {
		types = append(types, ft)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func (r *Registry) lookup(fileType domain.FileType) (driven.Normaliser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.byType[fileType]
	return n, ok
}
