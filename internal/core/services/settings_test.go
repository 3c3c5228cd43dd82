package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfpvault/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

type mockValidator struct {
	embeddingErr error
	nerErr       error
	lastNER      *domain.NERSettings
}

func (m *mockValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	return m.embeddingErr
}

func (m *mockValidator) ValidateNER(config *domain.NERSettings) error {
	m.lastNER = config
	return m.nerErr
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Chunking, settings.Chunking)
	assert.Equal(t, defaults.NER, settings.NER)
	assert.Equal(t, "passage: ", settings.Embedding.DocumentPrefix)
	assert.Equal(t, "query: ", settings.Embedding.QueryPrefix)
	assert.Equal(t, domain.VectorBackendSQLite, settings.VectorIndex.Backend)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("chunking.window", 200)
	_ = store.Set("ner.provider", "hugot")
	_ = store.Set("ner.model_path", "/models/ner")
	_ = store.Set("ner.threshold", 0.55)
	_ = store.Set("embedding.query_prefix", "")
	_ = store.Set("vector_index.backend", "qdrant")

	settings, err := NewSettingsService(store, nil).Get()
	require.NoError(t, err)

	assert.Equal(t, 200, settings.Chunking.Window)
	assert.Equal(t, domain.NERProviderHugot, settings.NER.Provider)
	assert.Equal(t, "/models/ner", settings.NER.ModelPath)
	assert.InDelta(t, 0.55, settings.NER.Threshold, 1e-9)
	assert.Empty(t, settings.Embedding.QueryPrefix)
	assert.Equal(t, domain.VectorBackendQdrant, settings.VectorIndex.Backend)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("ner.provider", "spacy")
	_ = store.Set("embedding.provider", "invalid_provider")
	_ = store.Set("progress.backend", "redis")

	settings, err := NewSettingsService(store, nil).Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.NER.Provider, settings.NER.Provider)
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Progress.Backend, settings.Progress.Backend)
}

func TestSettingsService_Set(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
	}{
		{"int", "chunking.window", "400", false},
		{"float", "ner.threshold", "0.5", false},
		{"string", "embedding.model", "nomic-embed-text", false},
		{"enum", "ner.provider", "ollama", false},
		{"unknown key", "search.mode", "hybrid", true},
		{"bad int", "chunking.overlap", "fifty", true},
		{"negative int", "chunking.overlap", "-1", true},
		{"bad float", "ner.threshold", "high", true},
		{"bad enum", "vector_index.backend", "pinecone", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.Set(tt.key, tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
		})
	}

	window, _ := store.Get("chunking.window")
	threshold, _ := store.Get("ner.threshold")
	provider, _ := store.Get("ner.provider")
	assert.Equal(t, 400, window)
	assert.Equal(t, 0.5, threshold)
	assert.Equal(t, "ollama", provider)
}

func TestSettingsService_Get_ToleratesLooseTypes(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"chunking.window":    int64(250),
		"chunking.overlap":   "40",
		"chunking.min_words": 12.0,
		"ner.threshold":      int64(1),
		"ner.window_words":   "many",
		"embedding.model":    42,
	})

	settings, err := NewSettingsService(store, nil).Get()
	require.NoError(t, err)

	d := domain.DefaultAppSettings()
	assert.Equal(t, 250, settings.Chunking.Window)
	assert.Equal(t, 40, settings.Chunking.Overlap)
	assert.Equal(t, 12, settings.Chunking.MinWords)
	assert.InDelta(t, 1.0, settings.NER.Threshold, 1e-9)
	assert.Equal(t, d.NER.WindowWords, settings.NER.WindowWords)
	assert.Equal(t, d.Embedding.Model, settings.Embedding.Model)
}

func TestSettingsService_Reset(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)
	require.NoError(t, service.Set("chunking.window", "120"))

	require.NoError(t, service.Reset("chunking.window"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings().Chunking.Window, settings.Chunking.Window)
	assert.Empty(t, store.Keys())

	assert.ErrorIs(t, service.Reset("nope"), domain.ErrInvalidInput)
}

func TestSettingsService_Keys(t *testing.T) {
	keys := NewSettingsService(memory.NewConfigStore(), nil).Keys()

	assert.Contains(t, keys, "chunking.window")
	assert.Contains(t, keys, "ner.threshold")
	assert.Contains(t, keys, "embedding.document_prefix")
	assert.Contains(t, keys, "vector_index.backend")
}

func TestSettingsService_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, NewSettingsService(memory.NewConfigStore(), nil).Validate())
	})

	cases := map[string]map[string]any{
		"overlap not below window": {"chunking.window": 50, "chunking.overlap": 50},
		"threshold out of range":   {"ner.threshold": 1.5},
		"hugot without model path": {"ner.provider": "hugot"},
		"openai without key":       {"embedding.provider": "openai"},
		"qdrant without url":       {"vector_index.backend": "qdrant"},
		"ner overlap too large":    {"ner.window_words": 10, "ner.overlap_words": 10},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			store := memory.NewConfigStore()
			for k, v := range values {
				_ = store.Set(k, v)
			}
			assert.ErrorIs(t, NewSettingsService(store, nil).Validate(), domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_ValidateConfigs(t *testing.T) {
	t.Run("nil validator", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)
		assert.NoError(t, service.ValidateEmbeddingConfig())
		assert.NoError(t, service.ValidateNERConfig())
	})

	t.Run("delegates to validator", func(t *testing.T) {
		store := memory.NewConfigStore()
		_ = store.Set("ner.provider", "ollama")
		v := &mockValidator{embeddingErr: errors.New("unreachable"), nerErr: errors.New("no model")}
		service := NewSettingsService(store, v)

		assert.EqualError(t, service.ValidateEmbeddingConfig(), "unreachable")
		assert.EqualError(t, service.ValidateNERConfig(), "no model")
		require.NotNil(t, v.lastNER)
		assert.Equal(t, domain.NERProviderOllama, v.lastNER.Provider)
	})
}
