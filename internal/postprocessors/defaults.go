// Package postprocessors builds the text processors that run after extraction.
package postprocessors

import (
	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/postprocessors/chunker"
)

// NewChunker creates the chunker from chunking settings.
// Zero or negative values keep the chunker defaults.
func NewChunker(cfg domain.ChunkingSettings) *chunker.Processor {
	var opts []chunker.Option

	if cfg.Window > 0 {
		opts = append(opts, chunker.WithWindow(cfg.Window))
	}
	if cfg.Overlap > 0 {
		opts = append(opts, chunker.WithOverlap(cfg.Overlap))
	}
	if cfg.MinWords > 0 {
		opts = append(opts, chunker.WithMinWords(cfg.MinWords))
	}

	return chunker.New(opts...)
}
