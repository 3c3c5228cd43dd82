// Package markdown extracts text and section headings from Markdown files.
package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
	"github.com/custodia-labs/rfpvault/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var atxHeading = regexp.MustCompile(`(?m)^#{1,6}[ \t]+(.+?)[ \t]*#*[ \t]*$`)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedFileTypes returns the file types this normaliser handles.
func (n *Normaliser) SupportedFileTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypeMD}
}

// Normalise returns the Markdown source unchanged. Headings are reported
// on a single page numbered 0 so chunks keep their section title.
func (n *Normaliser) Normalise(_ context.Context, content []byte) (*driven.NormaliseResult, error) {
	text := plaintext.Decode(content)

	result := &driven.NormaliseResult{Text: text}
	if titles := Headings(text); len(titles) > 0 {
		result.Pages = []domain.Page{{Number: 0, Text: text, SectionTitles: titles}}
	}
	return result, nil
}

// Headings returns the ATX heading titles in document order.
func Headings(text string) []string {
	var titles []string
	for _, m := range atxHeading.FindAllStringSubmatch(text, -1) {
		if title := strings.TrimSpace(m[1]); title != "" {
			titles = append(titles, title)
		}
	}
	return titles
}
