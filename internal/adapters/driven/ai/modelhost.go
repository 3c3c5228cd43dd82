package ai

import (
	"context"
	"errors"

	"golang.org/x/sync/semaphore"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
)

// ModelHost owns the process-wide entity model and embedding service.
// Every inference call on a model is serialised through its own weighted
// semaphore, so concurrent ingestion runs and queries queue instead of
// loading or driving the model in parallel. Waiting respects ctx.
type ModelHost struct {
	model    driven.EntityModel
	embedder driven.EmbeddingService

	modelSem *semaphore.Weighted
	embedSem *semaphore.Weighted
}

// NewModelHost wraps the given services. Either may be nil.
func NewModelHost(model driven.EntityModel, embedder driven.EmbeddingService) *ModelHost {
	return &ModelHost{
		model:    model,
		embedder: embedder,
		modelSem: semaphore.NewWeighted(1),
		embedSem: semaphore.NewWeighted(1),
	}
}

// EntityModel returns the serialised entity model, or nil when none is loaded.
func (h *ModelHost) EntityModel() driven.EntityModel {
	if h == nil || h.model == nil {
		return nil
	}
	return &hostedModel{host: h}
}

// EmbeddingService returns the serialised embedding service, or nil when none
// is configured.
func (h *ModelHost) EmbeddingService() driven.EmbeddingService {
	if h == nil || h.embedder == nil {
		return nil
	}
	return &hostedEmbedder{host: h}
}

// Close releases both services.
func (h *ModelHost) Close() error {
	var errs []error
	if h.model != nil {
		errs = append(errs, h.model.Close())
	}
	if h.embedder != nil {
		errs = append(errs, h.embedder.Close())
	}
	return errors.Join(errs...)
}

// hostedModel forwards to the host's entity model under its semaphore.
type hostedModel struct {
	host *ModelHost
}

var _ driven.EntityModel = (*hostedModel)(nil)

func (m *hostedModel) Predict(ctx context.Context, texts []string, labels []string, threshold float64) ([][]domain.EntitySpan, error) {
	if err := m.host.modelSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer m.host.modelSem.Release(1)
	return m.host.model.Predict(ctx, texts, labels, threshold)
}

func (m *hostedModel) Name() string {
	return m.host.model.Name()
}

// Close is a no-op; the host owns the model.
func (m *hostedModel) Close() error {
	return nil
}

// hostedEmbedder forwards to the host's embedding service under its semaphore.
type hostedEmbedder struct {
	host *ModelHost
}

var _ driven.EmbeddingService = (*hostedEmbedder)(nil)

func (e *hostedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.host.embedSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer e.host.embedSem.Release(1)
	return e.host.embedder.Embed(ctx, text)
}

func (e *hostedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.host.embedSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer e.host.embedSem.Release(1)
	return e.host.embedder.EmbedBatch(ctx, texts)
}

func (e *hostedEmbedder) Dimensions() int {
	return e.host.embedder.Dimensions()
}

func (e *hostedEmbedder) ModelName() string {
	return e.host.embedder.ModelName()
}

func (e *hostedEmbedder) Ping(ctx context.Context) error {
	return e.host.embedder.Ping(ctx)
}

// Close is a no-op; the host owns the service.
func (e *hostedEmbedder) Close() error {
	return nil
}
