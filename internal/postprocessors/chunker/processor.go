// Package chunker provides a word-window text chunking processor.
package chunker

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
)

// DefaultWindow is the default number of words per chunk.
const DefaultWindow = 350

// DefaultOverlap is the default number of words shared by consecutive chunks.
const DefaultOverlap = 50

// DefaultMinWords is the size below which a window is dropped.
const DefaultMinWords = 20

// Processor splits extracted text into overlapping word windows.
// When page data is available each page is chunked on its own, so no chunk
// spans two pages.
type Processor struct {
	window   int
	overlap  int
	minWords int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithWindow sets the maximum number of words per chunk.
func WithWindow(words int) Option {
	return func(p *Processor) {
		if words > 0 {
			p.window = words
		}
	}
}

// WithOverlap sets the overlap between chunks in words.
func WithOverlap(words int) Option {
	return func(p *Processor) {
		if words >= 0 {
			p.overlap = words
		}
	}
}

// WithMinWords sets the minimum number of words a window needs to be kept.
func WithMinWords(words int) Option {
	return func(p *Processor) {
		if words >= 0 {
			p.minWords = words
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		window:   DefaultWindow,
		overlap:  DefaultOverlap,
		minWords: DefaultMinWords,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed window size
	if p.overlap >= p.window {
		p.overlap = p.window / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the extraction result of a document into chunks.
// Chunk indexes are dense and follow emission order across pages.
func (p *Processor) Process(_ context.Context, doc *domain.Document, extraction *driven.NormaliseResult) ([]domain.Chunk, error) {
	if doc == nil || extraction == nil {
		return nil, domain.ErrInvalidInput
	}

	var chunks []domain.Chunk
	emit := func(words []string, pageNumber int, section string) {
		chunks = append(chunks, domain.Chunk{
			ID:           uuid.New().String(),
			DocumentID:   doc.ID,
			ChunkIndex:   len(chunks),
			Content:      strings.Join(words, " "),
			PageNumber:   pageNumber,
			SectionTitle: section,
			Metadata: map[string]any{
				"document_name": doc.OriginalFilename,
				"category":      doc.Category.String(),
			},
			CreatedAt: time.Now().UTC(),
		})
	}

	if len(extraction.Pages) > 0 {
		for _, page := range extraction.Pages {
			if strings.TrimSpace(page.Text) == "" {
				continue
			}
			section := ""
			if len(page.SectionTitles) > 0 {
				section = page.SectionTitles[0]
			}
			for _, w := range p.Windows(strings.Fields(page.Text)) {
				emit(w, page.Number, section)
			}
		}
		return chunks, nil
	}

	for _, w := range p.Windows(strings.Fields(extraction.Text)) {
		emit(w, 0, "")
	}
	return chunks, nil
}

// Windows returns the word windows of one text unit. A window starts every
// (window - overlap) words; windows shorter than the minimum are dropped.
func (p *Processor) Windows(words []string) [][]string {
	step := p.window - p.overlap
	var windows [][]string
	for start := 0; start < len(words); start += step {
		end := start + p.window
		if end > len(words) {
			end = len(words)
		}
		if end-start < p.minWords {
			continue
		}
		windows = append(windows, words[start:end])
	}
	return windows
}
