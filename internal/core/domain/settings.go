package domain

// AIProvider identifies a remote model provider for embeddings or entity recognition.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// NERProvider identifies the learned entity recognition backend.
type NERProvider string

// Available NER providers.
const (
	// NERProviderHugot runs a token classification model in-process.
	NERProviderHugot NERProvider = "hugot"

	// NERProviderOllama prompts a local LLM for entities.
	NERProviderOllama NERProvider = "ollama"

	// NERProviderNone disables the learned model; regex rules only.
	NERProviderNone NERProvider = "none"
)

// IsValid returns true if the NER provider is recognised.
func (p NERProvider) IsValid() bool {
	switch p {
	case NERProviderHugot, NERProviderOllama, NERProviderNone:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p NERProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p NERProvider) Description() string {
	switch p {
	case NERProviderHugot:
		return "Hugot (in-process token classification)"
	case NERProviderOllama:
		return "Ollama (LLM extraction)"
	case NERProviderNone:
		return "None (regex rules only)"
	default:
		return unknownDescription
	}
}

// VectorBackend selects the vector index implementation.
type VectorBackend string

// Available vector backends.
const (
	VectorBackendSQLite VectorBackend = "sqlite"
	VectorBackendMemory VectorBackend = "memory"
	VectorBackendQdrant VectorBackend = "qdrant"
)

// IsValid returns true if the vector backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendSQLite, VectorBackendMemory, VectorBackendQdrant:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// ProgressBackend selects the progress store implementation.
type ProgressBackend string

// Available progress backends.
const (
	ProgressBackendSQLite ProgressBackend = "sqlite"
	ProgressBackendBolt   ProgressBackend = "bolt"
	ProgressBackendMemory ProgressBackend = "memory"
)

// IsValid returns true if the progress backend is recognised.
func (b ProgressBackend) IsValid() bool {
	switch b {
	case ProgressBackendSQLite, ProgressBackendBolt, ProgressBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b ProgressBackend) String() string {
	return string(b)
}

// ChunkingSettings holds word-window chunking configuration.
type ChunkingSettings struct {
	// Window is the maximum number of words per chunk.
	Window int

	// Overlap is the number of words shared by consecutive chunks.
	Overlap int

	// MinWords is the size below which a trailing window is dropped.
	MinWords int
}

// NERSettings holds entity recognition configuration.
type NERSettings struct {
	// Provider is the learned model backend.
	Provider NERProvider

	// ModelPath is the local model directory (hugot).
	ModelPath string

	// OnnxFilename selects the ONNX file inside ModelPath (hugot).
	OnnxFilename string

	// BaseURL is the API endpoint (ollama).
	BaseURL string

	// Model is the LLM model name (ollama).
	Model string

	// Threshold is the minimum confidence for a model detection.
	Threshold float64

	// WindowWords is the inference window size in words.
	WindowWords int

	// OverlapWords is the inference window overlap in words.
	OverlapWords int
}

// IsConfigured returns true if a learned model is selected.
func (n NERSettings) IsConfigured() bool {
	switch n.Provider {
	case NERProviderHugot:
		return n.ModelPath != ""
	case NERProviderOllama:
		return true
	default:
		return false
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// DocumentPrefix is prepended to chunk text before embedding.
	DocumentPrefix string

	// QueryPrefix is prepended to search queries before embedding.
	QueryPrefix string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// VectorIndexSettings holds vector index configuration.
type VectorIndexSettings struct {
	// Backend selects the implementation.
	Backend VectorBackend

	// URL is the remote endpoint (qdrant).
	URL string

	// APIKey authenticates against the remote endpoint (qdrant).
	APIKey string
}

// ProgressSettings holds progress store configuration.
type ProgressSettings struct {
	// Backend selects the implementation.
	Backend ProgressBackend
}

// AppSettings holds all application settings.
type AppSettings struct {
	// DataDir is the root directory for the database, uploads and images.
	DataDir string

	Chunking    ChunkingSettings
	NER         NERSettings
	Embedding   EmbeddingSettings
	VectorIndex VectorIndexSettings
	Progress    ProgressSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Chunking: ChunkingSettings{
			Window:   350,
			Overlap:  50,
			MinWords: 20,
		},
		NER: NERSettings{
			Provider:     NERProviderNone,
			OnnxFilename: "model.onnx",
			Model:        "llama3.2",
			Threshold:    0.4,
			WindowWords:  150,
			OverlapWords: 20,
		},
		Embedding: EmbeddingSettings{
			Provider:       AIProviderOllama,
			Model:          "zylonai/multilingual-e5-large",
			DocumentPrefix: "passage: ",
			QueryPrefix:    "query: ",
		},
		VectorIndex: VectorIndexSettings{
			Backend: VectorBackendSQLite,
		},
		Progress: ProgressSettings{
			Backend: ProgressBackendSQLite,
		},
	}
}

// AllNERProviders returns all available NER providers.
func AllNERProviders() []NERProvider {
	return []NERProvider{
		NERProviderHugot,
		NERProviderOllama,
		NERProviderNone,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "zylonai/multilingual-e5-large",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"zylonai/multilingual-e5-large": 1024,
		"nomic-embed-text":              768,
		"mxbai-embed-large":             1024,
		"all-minilm":                    384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
