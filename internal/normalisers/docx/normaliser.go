// Package docx extracts text, headings and images from Word documents.
package docx

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
	"github.com/custodia-labs/rfpvault/internal/normalisers/ooxml"
)

// Ensure Normaliser implements the interfaces.
var (
	_ driven.Normaliser     = (*Normaliser)(nil)
	_ driven.ImageExtractor = (*Normaliser)(nil)
)

const (
	documentPart = "word/document.xml"
	mediaDir     = "word/media/"
)

// headingStylePrefixes are matched case-insensitively against paragraph
// style ids. Localised Word installs name heading styles "Titre1", "Titre2"...
var headingStylePrefixes = []string{"heading", "titre", "title"}

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedFileTypes returns the file types this normaliser handles.
func (n *Normaliser) SupportedFileTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypeDOCX}
}

// Normalise extracts the document paragraphs. DOCX has no page structure, so
// the result is a single unit numbered 0 carrying the heading paragraphs.
func (n *Normaliser) Normalise(_ context.Context, content []byte) (*driven.NormaliseResult, error) {
	reader, err := ooxml.Open(content)
	if err != nil {
		return nil, err
	}

	data, err := ooxml.ReadFile(reader, documentPart)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: missing %s, not a Word document", domain.ErrInvalidInput, documentPart)
		}
		return nil, err
	}

	paragraphs, err := parseParagraphs(data)
	if err != nil {
		return nil, err
	}

	var texts, titles []string
	for _, p := range paragraphs {
		if p.text == "" {
			continue
		}
		texts = append(texts, p.text)
		if p.heading {
			titles = append(titles, p.text)
		}
	}

	text := strings.Join(texts, "\n\n")
	return &driven.NormaliseResult{
		Text:  text,
		Pages: []domain.Page{{Number: 0, Text: text, SectionTitles: titles}},
	}, nil
}

// ExtractImages returns the embedded media images at least minSize pixels wide and high.
func (n *Normaliser) ExtractImages(_ context.Context, content []byte, minSize int) ([]domain.ExtractedImage, error) {
	reader, err := ooxml.Open(content)
	if err != nil {
		return nil, err
	}
	return ooxml.MediaImages(reader, mediaDir, minSize, nil), nil
}

type paragraph struct {
	text    string
	heading bool
}

// parseParagraphs walks word/document.xml and returns every w:p in document
// order with its trimmed text and whether its style is a heading style.
func parseParagraphs(data []byte) ([]paragraph, error) {
	type open struct {
		text    strings.Builder
		heading bool
	}

	var (
		result  []paragraph
		stack   []*open
		inText  bool
		decoder = xml.NewDecoder(bytes.NewReader(data))
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidInput, documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				stack = append(stack, &open{})
			case "pStyle":
				if len(stack) > 0 && isHeadingStyle(attr(t, "val")) {
					stack[len(stack)-1].heading = true
				}
			case "t":
				inText = true
			case "tab", "br", "cr":
				if len(stack) > 0 {
					stack[len(stack)-1].text.WriteByte(' ')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if len(stack) == 0 {
					continue
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				result = append(result, paragraph{
					text:    strings.TrimSpace(top.text.String()),
					heading: top.heading,
				})
			}
		case xml.CharData:
			if inText && len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}
	return result, nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func isHeadingStyle(style string) bool {
	style = strings.ToLower(style)
	for _, prefix := range headingStylePrefixes {
		if strings.HasPrefix(style, prefix) {
			return true
		}
	}
	return false
}
