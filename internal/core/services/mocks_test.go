package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
)

// mockEntityModel reports every occurrence of its known entities.
type mockEntityModel struct {
	mu       sync.Mutex
	entities map[string]string // text -> label
	err      error
	calls    int
	inputs   [][]string
}

func newMockEntityModel(entities map[string]string) *mockEntityModel {
	return &mockEntityModel{entities: entities}
}

func (m *mockEntityModel) Predict(_ context.Context, texts, _ []string, _ float64) ([][]domain.EntitySpan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.inputs = append(m.inputs, texts)
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]domain.EntitySpan, len(texts))
	for i, text := range texts {
		for entity, label := range m.entities {
			from := 0
			for {
				idx := strings.Index(text[from:], entity)
				if idx < 0 {
					break
				}
				start := from + idx
				out[i] = append(out[i], domain.EntitySpan{
					Text:  entity,
					Label: label,
					Start: start,
					End:   start + len(entity),
					Score: 0.9,
				})
				from = start + len(entity)
			}
		}
	}
	return out, nil
}

func (m *mockEntityModel) Name() string { return "mock-ner" }

func (m *mockEntityModel) Close() error { return nil }

func (m *mockEntityModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockEmbeddingService returns deterministic embeddings derived from text.
type mockEmbeddingService struct {
	mu      sync.Mutex
	err     error
	vectors map[string][]float32
	texts   []string
}

func (m *mockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, texts...)
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := m.vectors[t]; ok {
			out[i] = v
			continue
		}
		out[i] = []float32{float32(len(t)%7) + 1, 1, 0}
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return 3 }

func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return m.err }

func (m *mockEmbeddingService) Close() error { return nil }

func (m *mockEmbeddingService) embedded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// failingVectorIndex errors on every call.
type failingVectorIndex struct {
	deletes int
}

var errVectorBackend = errors.New("vector backend down")

func (f *failingVectorIndex) Upsert(_ context.Context, _ string, _ []driven.VectorRecord) error {
	return errVectorBackend
}

func (f *failingVectorIndex) Query(
	_ context.Context, _ string, _ []float32, _ int, _ driven.VectorFilter,
) ([]driven.VectorHit, error) {
	return nil, errVectorBackend
}

func (f *failingVectorIndex) DeleteWhere(_ context.Context, _ string, _ driven.VectorFilter) error {
	f.deletes++
	return errVectorBackend
}

func (f *failingVectorIndex) DeleteCollection(_ context.Context, _ string) error {
	f.deletes++
	return errVectorBackend
}

func (f *failingVectorIndex) Close() error { return nil }

// stubNormaliserRegistry returns canned extraction results.
type stubNormaliserRegistry struct {
	result *driven.NormaliseResult
	images []domain.ExtractedImage
	err    error
	block  chan struct{}
	panic  string
}

func (r *stubNormaliserRegistry) Normalise(
	_ context.Context, fileType domain.FileType, _ []byte,
) (*driven.NormaliseResult, error) {
	if r.block != nil {
		<-r.block
	}
	if r.panic != "" {
		panic(r.panic)
	}
	if r.err != nil {
		return nil, r.err
	}
	if fileType == domain.FileTypeOther {
		return nil, domain.ErrUnsupportedType
	}
	return r.result, nil
}

func (r *stubNormaliserRegistry) ExtractImages(
	_ context.Context, _ domain.FileType, _ []byte, _ int,
) ([]domain.ExtractedImage, error) {
	return r.images, nil
}

func (r *stubNormaliserRegistry) Register(_ driven.Normaliser) {}

func (r *stubNormaliserRegistry) SupportedFileTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypeText}
}
