package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir          = "data_dir"
	keyChunkWindow      = "chunking.window"
	keyChunkOverlap     = "chunking.overlap"
	keyChunkMinWords    = "chunking.min_words"
	keyNERProvider      = "ner.provider"
	keyNERModelPath     = "ner.model_path"
	keyNEROnnxFilename  = "ner.onnx_filename"
	keyNERBaseURL       = "ner.base_url"
	keyNERModel         = "ner.model"
	keyNERThreshold     = "ner.threshold"
	keyNERWindowWords   = "ner.window_words"
	keyNEROverlapWords  = "ner.overlap_words"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedDocPrefix   = "embedding.document_prefix"
	keyEmbedQueryPrefix = "embedding.query_prefix"
	keyVectorBackend    = "vector_index.backend"
	keyVectorURL        = "vector_index.url"
	keyVectorAPIKey     = "vector_index.api_key"
	keyProgressBackend  = "progress.backend"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
)

// settingKeys lists every supported key with its value kind.
var settingKeys = []struct {
	key  string
	kind settingKind
}{
	{keyDataDir, kindString},
	{keyChunkWindow, kindInt},
	{keyChunkOverlap, kindInt},
	{keyChunkMinWords, kindInt},
	{keyNERProvider, kindString},
	{keyNERModelPath, kindString},
	{keyNEROnnxFilename, kindString},
	{keyNERBaseURL, kindString},
	{keyNERModel, kindString},
	{keyNERThreshold, kindFloat},
	{keyNERWindowWords, kindInt},
	{keyNEROverlapWords, kindInt},
	{keyEmbedProvider, kindString},
	{keyEmbedModel, kindString},
	{keyEmbedBaseURL, kindString},
	{keyEmbedAPIKey, kindString},
	{keyEmbedDocPrefix, kindString},
	{keyEmbedQueryPrefix, kindString},
	{keyVectorBackend, kindString},
	{keyVectorURL, kindString},
	{keyVectorAPIKey, kindString},
	{keyProgressBackend, kindString},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		DataDir: s.getString(keyDataDir, d.DataDir),
		Chunking: domain.ChunkingSettings{
			Window:   s.getInt(keyChunkWindow, d.Chunking.Window),
			Overlap:  s.getInt(keyChunkOverlap, d.Chunking.Overlap),
			MinWords: s.getInt(keyChunkMinWords, d.Chunking.MinWords),
		},
		NER: domain.NERSettings{
			Provider:     s.getNERProvider(d.NER.Provider),
			ModelPath:    s.getString(keyNERModelPath, ""),
			OnnxFilename: s.getString(keyNEROnnxFilename, d.NER.OnnxFilename),
			BaseURL:      s.getString(keyNERBaseURL, ""),
			Model:        s.getString(keyNERModel, d.NER.Model),
			Threshold:    s.getFloat(keyNERThreshold, d.NER.Threshold),
			WindowWords:  s.getInt(keyNERWindowWords, d.NER.WindowWords),
			OverlapWords: s.getInt(keyNEROverlapWords, d.NER.OverlapWords),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:       s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:          s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:        s.getString(keyEmbedBaseURL, ""),
			APIKey:         s.getString(keyEmbedAPIKey, ""),
			DocumentPrefix: s.getString(keyEmbedDocPrefix, d.Embedding.DocumentPrefix),
			QueryPrefix:    s.getString(keyEmbedQueryPrefix, d.Embedding.QueryPrefix),
		},
		VectorIndex: domain.VectorIndexSettings{
			Backend: domain.VectorBackend(s.getString(keyVectorBackend, d.VectorIndex.Backend.String())),
			URL:     s.getString(keyVectorURL, ""),
			APIKey:  s.getString(keyVectorAPIKey, ""),
		},
		Progress: domain.ProgressSettings{
			Backend: domain.ProgressBackend(s.getString(keyProgressBackend, d.Progress.Backend.String())),
		},
	}

	if !settings.VectorIndex.Backend.IsValid() {
		settings.VectorIndex.Backend = d.VectorIndex.Backend
	}
	if !settings.Progress.Backend.IsValid() {
		settings.Progress.Backend = d.Progress.Backend
	}

	return settings, nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Keys returns every supported setting key.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.key
	}
	return keys
}

// Set validates and persists a single setting.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := lookupKind(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	if err := validateEnum(key, value); err != nil {
		return err
	}

	var stored any = value
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case kindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		stored = f
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Reset removes a stored setting so its default applies again.
func (s *SettingsService) Reset(key string) error {
	if _, ok := lookupKind(key); !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err := s.configStore.Unset(key); err != nil {
		return fmt.Errorf("reset %s: %w", key, err)
	}
	return nil
}

// Validate checks that current settings are coherent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	c := settings.Chunking
	if c.Window <= 0 {
		return fmt.Errorf("%w: chunking window must be positive", domain.ErrInvalidInput)
	}
	if c.Overlap >= c.Window {
		return fmt.Errorf("%w: chunking overlap (%d) must be smaller than window (%d)",
			domain.ErrInvalidInput, c.Overlap, c.Window)
	}

	n := settings.NER
	if n.Threshold <= 0 || n.Threshold > 1 {
		return fmt.Errorf("%w: ner threshold must be in (0, 1]", domain.ErrInvalidInput)
	}
	if n.OverlapWords >= n.WindowWords {
		return fmt.Errorf("%w: ner overlap (%d) must be smaller than window (%d)",
			domain.ErrInvalidInput, n.OverlapWords, n.WindowWords)
	}
	if n.Provider == domain.NERProviderHugot && n.ModelPath == "" {
		return fmt.Errorf("%w: ner provider hugot requires %s", domain.ErrInvalidInput, keyNERModelPath)
	}

	if settings.Embedding.Provider.RequiresAPIKey() && settings.Embedding.APIKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, settings.Embedding.Provider)
	}
	if settings.VectorIndex.Backend == domain.VectorBackendQdrant && settings.VectorIndex.URL == "" {
		return fmt.Errorf("%w: vector backend qdrant requires %s", domain.ErrInvalidInput, keyVectorURL)
	}

	return nil
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateNERConfig validates the current entity recognition configuration.
func (s *SettingsService) ValidateNERConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateNER(&settings.NER)
}

func lookupKind(key string) (settingKind, bool) {
	for _, k := range settingKeys {
		if k.key == key {
			return k.kind, true
		}
	}
	return kindString, false
}

func validateEnum(key, value string) error {
	var valid bool
	switch key {
	case keyNERProvider:
		valid = domain.NERProvider(value).IsValid()
	case keyEmbedProvider:
		valid = domain.AIProvider(value).IsValid()
	case keyVectorBackend:
		valid = domain.VectorBackend(value).IsValid()
	case keyProgressBackend:
		valid = domain.ProgressBackend(value).IsValid()
	default:
		return nil
	}
	if !valid {
		return fmt.Errorf("%w: invalid value %q for %s", domain.ErrInvalidInput, value, key)
	}
	return nil
}

// The getters below fall back to the default when a key is absent or holds a
// value of the wrong type. A present empty string is kept. Strings are
// parsed for numeric keys because hand-edited files sometimes quote numbers.

func (s *SettingsService) getString(key, defaultVal string) string {
	v, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	str, ok := v.(string)
	if !ok {
		return defaultVal
	}
	return str
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	v, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n == float64(int(n)) {
			return int(n)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	v, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.getString(key, ""))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getNERProvider(defaultVal domain.NERProvider) domain.NERProvider {
	provider := domain.NERProvider(s.getString(keyNERProvider, ""))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
