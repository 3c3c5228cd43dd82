// Package ai turns model settings into running services: the entity model
// used during anonymization and the embedding service used by search.
package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	ollamaembed "github.com/custodia-labs/rfpvault/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/rfpvault/internal/adapters/driven/embedding/openai"
	hugotner "github.com/custodia-labs/rfpvault/internal/adapters/driven/ner/hugot"
	ollamaner "github.com/custodia-labs/rfpvault/internal/adapters/driven/ner/ollama"
	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
	"github.com/custodia-labs/rfpvault/internal/logger"
)

const pingTimeout = 5 * time.Second

var aiLog = logger.For("ai")

// pinger is implemented by services backed by a remote endpoint.
type pinger interface {
	Ping(ctx context.Context) error
}

// Loaded holds the services Load brought up.
type Loaded struct {
	Host *ModelHost

	// Degraded explains each service that was left out.
	Degraded []error
}

// Close releases the hosted services.
func (l *Loaded) Close() {
	if l.Host == nil {
		return
	}
	if err := l.Host.Close(); err != nil {
		aiLog.Warn("closing models: %v", err)
	}
}

// Load builds both services from settings. A service that cannot be built or
// does not answer is left out: detection then runs on regex rules alone and
// search reports that it is unavailable.
func Load(ctx context.Context, settings *domain.AppSettings, prompts driven.PromptStore) *Loaded {
	loaded := &Loaded{}

	embedder, err := NewEmbedder(&settings.Embedding)
	if err == nil && embedder != nil {
		if err = ping(ctx, embedder); err != nil {
			_ = embedder.Close()
			err = fmt.Errorf("%w: %s unreachable: %w", domain.ErrEmbeddingUnavailable, settings.Embedding.Model, err)
		}
	}
	if err != nil {
		loaded.Degraded = append(loaded.Degraded, err)
		embedder = nil
	}

	model, err := NewEntityModel(&settings.NER, prompts)
	if err != nil {
		loaded.Degraded = append(loaded.Degraded, err)
		model = nil
	}

	for _, err := range loaded.Degraded {
		aiLog.Warn("%v", err)
	}
	loaded.Host = NewModelHost(model, embedder)
	return loaded
}

// NewEmbedder returns the embedding service cfg selects, nil when none is
// configured. Nothing is contacted.
func NewEmbedder(cfg *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if cfg == nil || !cfg.IsConfigured() {
		return nil, nil
	}

	dims := domain.EmbeddingDimensions()[cfg.Model]
	switch cfg.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: dims,
		}), nil
	case domain.AIProviderOpenAI:
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: dims,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		return svc, nil
	}
	return nil, fmt.Errorf("%w: embedding provider %s", domain.ErrUnsupportedType, cfg.Provider)
}

// NewEntityModel returns the learned entity model cfg selects, nil for
// regex-only recognition. Local models are loaded here.
func NewEntityModel(cfg *domain.NERSettings, prompts driven.PromptStore) (driven.EntityModel, error) {
	if cfg == nil || !cfg.IsConfigured() {
		return nil, nil
	}

	switch cfg.Provider {
	case domain.NERProviderHugot:
		if _, err := os.Stat(cfg.ModelPath); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
		}
		model, err := hugotner.NewModel(hugotner.Config{
			ModelPath:    cfg.ModelPath,
			OnnxFilename: cfg.OnnxFilename,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
		}
		return model, nil
	case domain.NERProviderOllama:
		return ollamaner.NewModel(ollamaner.Config{BaseURL: cfg.BaseURL, Model: cfg.Model}, prompts), nil
	}
	return nil, fmt.Errorf("%w: entity model provider %s", domain.ErrUnsupportedType, cfg.Provider)
}

// ping bounds p.Ping by pingTimeout. Values without a Ping method pass.
func ping(ctx context.Context, v any) error {
	p, ok := v.(pinger)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	err := p.Ping(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("no answer within %s", pingTimeout)
	}
	return err
}
