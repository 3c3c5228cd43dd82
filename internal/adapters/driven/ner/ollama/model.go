// Package ollama provides an entity recognition adapter that prompts a local
// Ollama LLM for sensitive entities.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
)

// Ensure Model implements the interface.
var _ driven.EntityModel = (*Model)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 120 * time.Second
	DefaultRate    = 4
)

// defaultExtractionPrompt is the fallback prompt when no PromptStore is configured.
const defaultExtractionPrompt = `Extract every sensitive entity from the text below.
Allowed labels: %s.
Return JSON only, in the form {"entities": [{"text": "...", "label": "...", "score": 0.0}]}.
Copy each entity text exactly as it appears.

Text:
%s`

// Config holds configuration for the Ollama entity model.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the LLM model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// RequestsPerSecond caps the request rate (default: 4).
	RequestsPerSecond float64
}

// Model extracts entities by prompting an Ollama LLM once per text.
type Model struct {
	client      *http.Client
	baseURL     string
	model       string
	limiter     *rate.Limiter
	promptStore driven.PromptStore
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Format  string   `json:"format,omitempty"`
	Options *options `json:"options,omitempty"`
}

// options holds generation parameters.
type options struct {
	Temperature float64 `json:"temperature"`
}

// generateResponse is the Ollama /api/generate response format.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// extraction is the JSON document the prompt asks the model for.
type extraction struct {
	Entities []struct {
		Text  string   `json:"text"`
		Label string   `json:"label"`
		Score *float64 `json:"score"`
	} `json:"entities"`
}

// NewModel creates a new Ollama entity model. promptStore may be nil.
func NewModel(cfg Config, promptStore driven.PromptStore) *Model {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRate
	}

	return &Model{
		client:      &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		promptStore: promptStore,
	}
}

// Predict prompts the model for each text and locates the returned entities.
func (m *Model) Predict(ctx context.Context, texts []string, labels []string, threshold float64) ([][]domain.EntitySpan, error) {
	allowed := make(map[string]bool, len(labels))
	for _, l := range labels {
		allowed[strings.ToLower(l)] = true
	}
	template := m.loadPrompt()

	results := make([][]domain.EntitySpan, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			results[i] = []domain.EntitySpan{}
			continue
		}
		if err := m.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		raw, err := m.generate(ctx, fmt.Sprintf(template, strings.Join(labels, ", "), text))
		if err != nil {
			return nil, err
		}
		results[i] = locate(text, raw, allowed, threshold)
	}
	return results, nil
}

// generate sends one prompt and returns the raw model output.
func (m *Model) generate(ctx context.Context, prompt string) (string, error) {
	jsonBody, err := json.Marshal(generateRequest{
		Model:   m.model,
		Prompt:  prompt,
		Stream:  false,
		Format:  "json",
		Options: &options{Temperature: 0},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("ollama error (status %d): failed to read response", resp.StatusCode)
		}
		return "", fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return genResp.Response, nil
}

// locate parses the model output and finds every whole-word occurrence of
// each entity in text. Entities that do not appear verbatim are dropped.
func locate(text, raw string, allowed map[string]bool, threshold float64) []domain.EntitySpan {
	spans := []domain.EntitySpan{}

	var parsed extraction
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		return spans
	}

	seen := make(map[int]bool)
	for _, e := range parsed.Entities {
		value := strings.TrimSpace(e.Text)
		label := strings.ToLower(strings.TrimSpace(e.Label))
		if value == "" || !allowed[label] {
			continue
		}
		score := 1.0
		if e.Score != nil {
			score = *e.Score
		}
		if score < threshold {
			continue
		}
		for from := 0; from < len(text); {
			idx := strings.Index(text[from:], value)
			if idx < 0 {
				break
			}
			start := from + idx
			end := start + len(value)
			if !seen[start] && wholeWord(text, start, end) {
				seen[start] = true
				spans = append(spans, domain.EntitySpan{
					Text:  value,
					Label: label,
					Start: start,
					End:   end,
					Score: score,
				})
			}
			from = end
		}
	}
	return spans
}

// wholeWord reports whether text[start:end] is not glued to a letter or
// digit on either side.
func wholeWord(text string, start, end int) bool {
	if start > 0 {
		before, _ := utf8.DecodeLastRuneInString(text[:start])
		first, _ := utf8.DecodeRuneInString(text[start:end])
		if isWordRune(before) && isWordRune(first) {
			return false
		}
	}
	if end < len(text) {
		after, _ := utf8.DecodeRuneInString(text[end:])
		last, _ := utf8.DecodeLastRuneInString(text[start:end])
		if isWordRune(after) && isWordRune(last) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// loadPrompt loads the prompt from the store, falling back to the default if unavailable.
func (m *Model) loadPrompt() string {
	if m.promptStore == nil {
		return defaultExtractionPrompt
	}
	prompt, err := m.promptStore.Load(driven.PromptEntityExtraction)
	if err != nil || strings.Count(prompt, "%s") != 2 {
		return defaultExtractionPrompt
	}
	return prompt
}

// Name returns the model identifier.
func (m *Model) Name() string {
	return "ollama:" + m.model
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
func (m *Model) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: API returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (m *Model) Close() error {
	return nil
}
