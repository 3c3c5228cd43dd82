package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/rfpvault/internal/adapters/driven/ai"
	"github.com/custodia-labs/rfpvault/internal/adapters/driven/config/file"
	"github.com/custodia-labs/rfpvault/internal/adapters/driven/storage/bolt"
	"github.com/custodia-labs/rfpvault/internal/adapters/driven/storage/files"
	"github.com/custodia-labs/rfpvault/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/rfpvault/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/rfpvault/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/rfpvault/internal/adapters/driving/cli"
	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
	"github.com/custodia-labs/rfpvault/internal/core/services"
	"github.com/custodia-labs/rfpvault/internal/logger"
	"github.com/custodia-labs/rfpvault/internal/normalisers"
	"github.com/custodia-labs/rfpvault/internal/postprocessors"
)

// Environment variables that override stored settings.
const (
	envDataDir    = "RFPVAULT_DATA_DIR"
	envOpenAIKey  = "OPENAI_API_KEY"
	envQdrantKey  = "QDRANT_API_KEY"
	envOllamaHost = "OLLAMA_HOST"
)

// uploadsDir holds stored originals and extracted images under the data directory.
const uploadsDir = "uploads"

// applyEnv overlays environment overrides on settings.
func applyEnv(settings *domain.AppSettings) {
	if v := os.Getenv(envDataDir); v != "" {
		settings.DataDir = v
	}
	if v := os.Getenv(envOpenAIKey); v != "" && settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = v
	}
	if v := os.Getenv(envQdrantKey); v != "" && settings.VectorIndex.APIKey == "" {
		settings.VectorIndex.APIKey = v
	}
	if v := os.Getenv(envOllamaHost); v != "" {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = v
		}
		if settings.NER.BaseURL == "" {
			settings.NER.BaseURL = v
		}
	}
}

// resolveDataDir picks the data directory: flag, then settings (which carry
// the environment override), then the config directory.
func resolveDataDir(flag string, settings *domain.AppSettings, configDir string) string {
	switch {
	case flag != "":
		return flag
	case settings.DataDir != "":
		return settings.DataDir
	default:
		return configDir
	}
}

// closers runs cleanup functions in reverse registration order.
type closers []func()

func (c *closers) add(fn func()) {
	*c = append(*c, fn)
}

func (c closers) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// bootstrap wires adapters and services from stored settings.
func bootstrap(opts cli.Options) (*cli.Services, func(), error) {
	configDir := opts.DataDir
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, nil, fmt.Errorf("resolve config directory: %w", err)
		}
		configDir = dir
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}
	applyEnv(settings)
	dataDir := resolveDataDir(opts.DataDir, settings, configDir)
	logger.Debug("Data directory: %s", dataDir)

	var cleanup closers
	fail := func(err error) (*cli.Services, func(), error) {
		cleanup.run()
		return nil, nil, err
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fail(fmt.Errorf("open database: %w", err))
	}
	cleanup.add(func() { _ = store.Close() })

	blobs, err := files.NewBlobStore(filepath.Join(dataDir, uploadsDir))
	if err != nil {
		return fail(fmt.Errorf("open uploads: %w", err))
	}

	progress, closeProgress, err := newProgressStore(settings.Progress.Backend, dataDir, store)
	if err != nil {
		return fail(err)
	}
	cleanup.add(closeProgress)

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		return fail(fmt.Errorf("open prompts: %w", err))
	}
	models := ai.Load(context.Background(), settings, prompts)
	cleanup.add(models.Close)

	search := services.NewSearchService(
		newVectorIndex(settings.VectorIndex, store),
		models.Host.EmbeddingService(),
		services.WithEmbeddingPrefixes(settings.Embedding.DocumentPrefix, settings.Embedding.QueryPrefix),
	)
	detector := services.NewEntityDetector(
		models.Host.EntityModel(),
		services.WithThreshold(settings.NER.Threshold),
		services.WithInferenceWindow(settings.NER.WindowWords, settings.NER.OverlapWords),
	)
	anonymizer := services.NewAnonymizationService(detector, store.MappingStore())
	ingestion := services.NewIngestionOrchestrator(
		store.DocumentStore(), blobs, normalisers.NewDefaultRegistry(),
		postprocessors.NewChunker(settings.Chunking), progress, anonymizer, search,
	)
	// Background runs finish before stores close.
	cleanup.add(ingestion.Wait)

	return &cli.Services{
		Ingestion:     ingestion,
		Anonymization: anonymizer,
		Search:        search,
		Document:      services.NewDocumentService(store.DocumentStore(), blobs, store.MappingStore(), progress, search),
		Settings:      settingsService,
	}, cleanup.run, nil
}

// newProgressStore opens the configured progress backend.
func newProgressStore(backend domain.ProgressBackend, dataDir string, store *sqlite.Store) (driven.ProgressStore, func(), error) {
	switch backend {
	case domain.ProgressBackendBolt:
		p, err := bolt.NewProgressStore(dataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open progress store: %w", err)
		}
		return p, func() { _ = p.Close() }, nil
	case domain.ProgressBackendMemory:
		return memory.NewProgressStore(), func() {}, nil
	default:
		return store.ProgressStore(), func() {}, nil
	}
}

// newVectorIndex returns the configured vector backend.
func newVectorIndex(settings domain.VectorIndexSettings, store *sqlite.Store) driven.VectorIndex {
	switch settings.Backend {
	case domain.VectorBackendQdrant:
		return qdrant.NewIndex(qdrant.Config{URL: settings.URL, APIKey: settings.APIKey})
	case domain.VectorBackendMemory:
		return memory.NewVectorIndex()
	default:
		return store.VectorIndex()
	}
}
