package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPrompts struct {
	prompt string
	err    error
}

func (s stubPrompts) Load(string) (string, error) { return s.prompt, s.err }
func (s stubPrompts) Reload() {}

func newServer(t *testing.T, reply string, prompts *[]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.WriteHeader(http.StatusOK)
		case "/api/generate":
			var req generateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "json", req.Format)
			assert.False(t, req.Stream)
			if prompts != nil {
				*prompts = append(*prompts, req.Prompt)
			}
			_ = json.NewEncoder(w).Encode(generateResponse{Response: reply, Done: true})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewModel_Defaults(t *testing.T) {
	m := NewModel(Config{}, nil)
	assert.Equal(t, DefaultBaseURL, m.baseURL)
	assert.Equal(t, DefaultModel, m.model)
	assert.Equal(t, "ollama:"+DefaultModel, m.Name())
}

func TestModel_Predict(t *testing.T) {
	reply := `{"entities": [
		{"text": "Jean Dupont", "label": "person", "score": 0.9},
		{"text": "Acme", "label": "company"},
		{"text": "Inconnu", "label": "person"},
		{"text": "Lyon", "label": "city"},
		{"text": "bas", "label": "person", "score": 0.1}
	]}`
	var prompts []string
	server := newServer(t, reply, &prompts)
	m := NewModel(Config{BaseURL: server.URL, RequestsPerSecond: 1000}, nil)

	text := "Jean Dupont (Acme) a rencontré Acme à Lyon, en bas."
	results, err := m.Predict(context.Background(), []string{text, "  "}, []string{"person", "company"}, 0.4)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Empty(t, results[1])
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "person, company")
	assert.Contains(t, prompts[0], text)

	spans := results[0]
	require.Len(t, spans, 3)
	assert.Equal(t, "Jean Dupont", spans[0].Text)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, 11, spans[0].End)
	for _, s := range spans[1:] {
		assert.Equal(t, "Acme", s.Text)
		assert.Equal(t, "company", s.Label)
		assert.Equal(t, 1.0, s.Score)
		assert.Equal(t, "Acme", text[s.Start:s.End])
	}
}

func TestModel_Predict_WholeWordsOnly(t *testing.T) {
	reply := `{"entities": [{"text": "Acme", "label": "company"}, {"text": "Lyon", "label": "address"}]}`
	server := newServer(t, reply, nil)
	m := NewModel(Config{BaseURL: server.URL, RequestsPerSecond: 1000}, nil)

	text := "Acmeco et Acme, Lyonnais à Lyon; (Acme)2Acme"
	results, err := m.Predict(context.Background(), []string{text}, []string{"company", "address"}, 0.4)
	require.NoError(t, err)

	var starts []int
	for _, s := range results[0] {
		starts = append(starts, s.Start)
	}
	assert.ElementsMatch(t, []int{
		strings.Index(text, "Acme,"),
		strings.Index(text, "Lyon;"),
		strings.Index(text, "(Acme)") + 1,
	}, starts)
}

func TestModel_Predict_InvalidJSONYieldsNothing(t *testing.T) {
	server := newServer(t, "not json", nil)
	m := NewModel(Config{BaseURL: server.URL, RequestsPerSecond: 1000}, nil)

	results, err := m.Predict(context.Background(), []string{"Jean Dupont"}, []string{"person"}, 0.4)
	require.NoError(t, err)
	assert.Empty(t, results[0])
}

func TestModel_Predict_ServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()
	m := NewModel(Config{BaseURL: server.URL, RequestsPerSecond: 1000}, nil)

	_, err := m.Predict(context.Background(), []string{"a", "b"}, []string{"person"}, 0.4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
	assert.Equal(t, int32(1), calls.Load())
}

func TestModel_LoadPrompt(t *testing.T) {
	t.Run("store template used", func(t *testing.T) {
		m := NewModel(Config{}, stubPrompts{prompt: "labels=%s text=%s"})
		assert.Equal(t, "labels=%s text=%s", m.loadPrompt())
	})

	t.Run("store error falls back", func(t *testing.T) {
		m := NewModel(Config{}, stubPrompts{err: errors.New("missing")})
		assert.Equal(t, defaultExtractionPrompt, m.loadPrompt())
	})

	t.Run("malformed template falls back", func(t *testing.T) {
		m := NewModel(Config{}, stubPrompts{prompt: "only %s"})
		assert.Equal(t, defaultExtractionPrompt, m.loadPrompt())
	})
}

func TestModel_Ping(t *testing.T) {
	server := newServer(t, "", nil)
	require.NoError(t, NewModel(Config{BaseURL: server.URL}, nil).Ping(context.Background()))

	down := NewModel(Config{BaseURL: "http://127.0.0.1:1"}, nil)
	assert.Error(t, down.Ping(context.Background()))
}
