package chunker

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
)

// words builds a text of n distinct words w0 w1 ... w(n-1).
func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func testDoc() *domain.Document {
	return &domain.Document{
		ID:               "doc-1",
		OriginalFilename: "ao_2024.pdf",
		Category:         domain.CategoryOldRFP,
	}
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.window != DefaultWindow {
			t.Errorf("expected window %d, got %d", DefaultWindow, p.window)
		}
		if p.overlap != DefaultOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultOverlap, p.overlap)
		}
		if p.minWords != DefaultMinWords {
			t.Errorf("expected minWords %d, got %d", DefaultMinWords, p.minWords)
		}
	})

	t.Run("custom values", func(t *testing.T) {
		p := New(WithWindow(100), WithOverlap(10), WithMinWords(5))
		if p.window != 100 || p.overlap != 10 || p.minWords != 5 {
			t.Errorf("unexpected config: %+v", p)
		}
	})

	t.Run("overlap exceeds window", func(t *testing.T) {
		p := New(WithWindow(100), WithOverlap(150))
		if p.overlap >= p.window {
			t.Error("overlap should be reduced when it exceeds window")
		}
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		p := New(WithWindow(0), WithOverlap(-1), WithMinWords(-3))
		if p.window != DefaultWindow {
			t.Errorf("expected default window, got %d", p.window)
		}
		if p.overlap != DefaultOverlap {
			t.Errorf("expected default overlap, got %d", p.overlap)
		}
		if p.minWords != DefaultMinWords {
			t.Errorf("expected default minWords, got %d", p.minWords)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	p := New()
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}

func TestProcess_EightHundredWordPage(t *testing.T) {
	p := New()
	ext := &driven.NormaliseResult{
		Pages: []domain.Page{{Number: 1, Text: words(800), SectionTitles: []string{"Objet du marché"}}},
	}

	chunks, err := p.Process(context.Background(), testDoc(), ext)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []int{350, 350, 200}
	if len(chunks) != len(expected) {
		t.Fatalf("expected %d chunks, got %d", len(expected), len(chunks))
	}
	for i, want := range expected {
		got := len(strings.Fields(chunks[i].Content))
		if got != want {
			t.Errorf("chunk %d: expected %d words, got %d", i, want, got)
		}
		if chunks[i].ChunkIndex != i {
			t.Errorf("chunk %d: expected index %d, got %d", i, i, chunks[i].ChunkIndex)
		}
		if chunks[i].PageNumber != 1 {
			t.Errorf("chunk %d: expected page 1, got %d", i, chunks[i].PageNumber)
		}
		if chunks[i].SectionTitle != "Objet du marché" {
			t.Errorf("chunk %d: unexpected section %q", i, chunks[i].SectionTitle)
		}
	}
}

func TestProcess_ConsecutiveChunksShareOverlap(t *testing.T) {
	p := New()
	ext := &driven.NormaliseResult{Text: words(1000)}

	chunks, err := p.Process(context.Background(), testDoc(), ext)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i+1 < len(chunks); i++ {
		cur := strings.Fields(chunks[i].Content)
		next := strings.Fields(chunks[i+1].Content)
		if len(next) < DefaultOverlap {
			continue
		}
		tail := cur[len(cur)-DefaultOverlap:]
		head := next[:DefaultOverlap]
		if strings.Join(tail, " ") != strings.Join(head, " ") {
			t.Errorf("chunks %d and %d do not share %d words", i, i+1, DefaultOverlap)
		}
		if i+1 < len(chunks)-1 && len(next) != DefaultWindow {
			t.Errorf("non-final chunk %d has %d words", i+1, len(next))
		}
	}
}

func TestProcess_TrailingWindowBelowFloorDropped(t *testing.T) {
	p := New()

	t.Run("19 word tail dropped", func(t *testing.T) {
		// Windows start at 0 and 300; the second covers 300..318 (19 words).
		chunks, err := p.Process(context.Background(), testDoc(), &driven.NormaliseResult{Text: words(319)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(chunks) != 1 {
			t.Fatalf("expected 1 chunk, got %d", len(chunks))
		}
	})

	t.Run("20 word tail kept", func(t *testing.T) {
		chunks, err := p.Process(context.Background(), testDoc(), &driven.NormaliseResult{Text: words(320)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(chunks) != 2 {
			t.Fatalf("expected 2 chunks, got %d", len(chunks))
		}
		if n := len(strings.Fields(chunks[1].Content)); n != 20 {
			t.Errorf("expected 20 word tail, got %d", n)
		}
	})

	t.Run("short document produces nothing", func(t *testing.T) {
		chunks, err := p.Process(context.Background(), testDoc(), &driven.NormaliseResult{Text: words(19)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(chunks) != 0 {
			t.Errorf("expected no chunks, got %d", len(chunks))
		}
	})
}

func TestProcess_PageAwareNeverSpansPages(t *testing.T) {
	p := New()
	ext := &driven.NormaliseResult{
		Pages: []domain.Page{
			{Number: 1, Text: words(400)},
			{Number: 2, Text: "   "},
			{Number: 3, Text: words(30), SectionTitles: []string{"Annexe", "Tarifs"}},
		},
		PageCount: 3,
	}

	chunks, err := p.Process(context.Background(), testDoc(), ext)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[0].PageNumber != 1 || chunks[1].PageNumber != 1 {
		t.Errorf("first two chunks should come from page 1")
	}
	if chunks[2].PageNumber != 3 || chunks[2].SectionTitle != "Annexe" {
		t.Errorf("unexpected last chunk origin: page %d section %q", chunks[2].PageNumber, chunks[2].SectionTitle)
	}
	for i, c := range chunks {
		if c.ChunkIndex != i {
			t.Errorf("expected dense index %d, got %d", i, c.ChunkIndex)
		}
	}
}

func TestProcess_PlainTextHasNoPage(t *testing.T) {
	p := New()
	chunks, err := p.Process(context.Background(), testDoc(), &driven.NormaliseResult{Text: words(50)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.PageNumber != 0 || c.SectionTitle != "" {
		t.Errorf("expected page 0 and no section, got %d %q", c.PageNumber, c.SectionTitle)
	}
	if c.DocumentID != "doc-1" {
		t.Errorf("expected document id doc-1, got %s", c.DocumentID)
	}
	if c.Metadata["document_name"] != "ao_2024.pdf" || c.Metadata["category"] != "old_rfp" {
		t.Errorf("unexpected metadata: %v", c.Metadata)
	}
	if c.ID == "" {
		t.Error("expected chunk id to be set")
	}
}

func TestProcess_InvalidInput(t *testing.T) {
	p := New()
	if _, err := p.Process(context.Background(), nil, &driven.NormaliseResult{}); err == nil {
		t.Error("expected error for nil document")
	}
	if _, err := p.Process(context.Background(), testDoc(), nil); err == nil {
		t.Error("expected error for nil extraction")
	}
}
