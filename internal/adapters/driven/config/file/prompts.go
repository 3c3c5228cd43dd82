package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
	"github.com/custodia-labs/rfpvault/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// promptTemplate is a built-in prompt and the number of %s verbs a
// replacement file must keep.
type promptTemplate struct {
	text  string
	verbs int
}

var builtinPrompts = map[string]promptTemplate{
	driven.PromptEntityExtraction: {
		verbs: 2,
		text: `Tu es un outil d'anonymisation de documents d'appels d'offres.
Extract every sensitive entity from the text below.
Allowed labels: %s.
Return JSON only, in the form {"entities": [{"text": "...", "label": "...", "score": 0.0}]}.
Copy each entity text exactly as it appears in the text. Do not translate or normalise it.

Text:
%s`,
	},
}

const promptsReadme = `# rfpvault prompts

Templates used when entity recognition runs through an LLM
(ner.provider = "ollama"). Edit a .txt file to change the prompt; it is
picked up on the next call.

entity_extraction.txt takes two %s verbs, in order: the comma-separated
allowed labels, then the text to analyse. A file with a different number of
%s verbs is ignored and the built-in prompt is used.
`

type cachedPrompt struct {
	text    string
	modTime time.Time
}

// PromptStore serves prompt templates from <dir>/<name>.txt. Built-in
// templates are written to the directory on first use and stay the fallback
// when a file is missing or invalid.
type PromptStore struct {
	dir string

	seedOnce sync.Once

	mu    sync.Mutex
	cache map[string]cachedPrompt
}

// NewPromptStore creates a store over dir, ~/.rfpvault/prompts when empty.
// No I/O happens until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		base, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(base, "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]cachedPrompt)}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the template called name. A file edited since the last call
// is read again.
func (s *PromptStore) Load(name string) (string, error) {
	s.seedOnce.Do(s.seed)

	builtin, known := builtinPrompts[name]
	path := filepath.Join(s.dir, name+".txt")

	info, err := os.Stat(path)
	if err != nil {
		if known {
			return builtin.text, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.cache[name]; ok && c.modTime.Equal(info.ModTime()) {
		return c.text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if known {
			return builtin.text, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	text := strings.TrimSpace(string(data))
	if known && strings.Count(text, "%s") != builtin.verbs {
		logger.Warn("Prompt %s needs %d %%s verbs, using the built-in prompt", path, builtin.verbs)
		text = builtin.text
	}
	s.cache[name] = cachedPrompt{text: text, modTime: info.ModTime()}
	return text, nil
}

// Reload drops every cached template.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]cachedPrompt)
	s.mu.Unlock()
}

// seed writes missing built-in templates and the README. Failures are logged
// and leave Load on built-in templates.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		logger.Warn("Creating prompt directory: %v", err)
		return
	}
	files := map[string]string{"README.md": promptsReadme}
	for name, p := range builtinPrompts {
		files[name+".txt"] = p.text
	}
	for name, content := range files {
		path := filepath.Join(s.dir, name)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			logger.Warn("Writing %s: %v", path, err)
		}
	}
}
