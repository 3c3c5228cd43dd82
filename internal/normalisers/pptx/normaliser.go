// Package pptx extracts slide text and images from PowerPoint presentations.
// Each slide becomes one page.
package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
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

const mediaDir = "ppt/media/"

var slidePattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Normaliser handles PPTX presentations.
type Normaliser struct{}

// New creates a new PPTX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedFileTypes returns the file types this normaliser handles.
func (n *Normaliser) SupportedFileTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypePPTX}
}

type slide struct {
	number int
	file   *zip.File
}

// Normalise extracts the text of every slide in slide order. The first
// non-empty paragraph of a slide is used as its section title.
func (n *Normaliser) Normalise(_ context.Context, content []byte) (*driven.NormaliseResult, error) {
	reader, err := ooxml.Open(content)
	if err != nil {
		return nil, err
	}

	slides := listSlides(reader)
	if len(slides) == 0 {
		return nil, fmt.Errorf("%w: no slides found, not a PowerPoint presentation", domain.ErrInvalidInput)
	}

	pages := make([]domain.Page, 0, len(slides))
	texts := make([]string, 0, len(slides))
	for _, s := range slides {
		data, err := ooxml.ReadFile(reader, s.file.Name)
		if err != nil {
			return nil, err
		}
		paragraphs, err := slideParagraphs(data)
		if err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidInput, s.file.Name, err)
		}

		page := domain.Page{Number: s.number, Text: strings.Join(paragraphs, "\n")}
		if len(paragraphs) > 0 {
			page.SectionTitles = []string{paragraphs[0]}
		}
		pages = append(pages, page)
		if page.Text != "" {
			texts = append(texts, page.Text)
		}
	}

	return &driven.NormaliseResult{
		Text:      strings.Join(texts, "\n\n"),
		Pages:     pages,
		PageCount: len(pages),
	}, nil
}

// ExtractImages returns media images, numbered with the first slide that
// references them.
func (n *Normaliser) ExtractImages(_ context.Context, content []byte, minSize int) ([]domain.ExtractedImage, error) {
	reader, err := ooxml.Open(content)
	if err != nil {
		return nil, err
	}

	owners := mediaOwners(reader, listSlides(reader))
	return ooxml.MediaImages(reader, mediaDir, minSize, func(name string) int {
		return owners[name]
	}), nil
}

// listSlides returns the slide parts sorted by slide number.
func listSlides(reader *zip.Reader) []slide {
	var slides []slide
	for _, f := range reader.File {
		m := slidePattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slide{number: n, file: f})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].number < slides[j].number })
	return slides
}

// slideParagraphs returns the trimmed non-empty a:p paragraphs of a slide.
func slideParagraphs(data []byte) ([]string, error) {
	var (
		paragraphs []string
		current    strings.Builder
		inPara     bool
		inText     bool
		decoder    = xml.NewDecoder(bytes.NewReader(data))
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				current.Reset()
			case "t":
				inText = true
			case "br":
				current.WriteByte(' ')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inPara {
					if text := strings.TrimSpace(current.String()); text != "" {
						paragraphs = append(paragraphs, text)
					}
				}
				inPara = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}

type relationships struct {
	Relationships []struct {
		Target string `xml:"Target,attr"`
		Type   string `xml:"Type,attr"`
	} `xml:"Relationship"`
}

// mediaOwners maps each media entry to the lowest slide number referencing it.
func mediaOwners(reader *zip.Reader, slides []slide) map[string]int {
	owners := make(map[string]int)
	for _, s := range slides {
		relsName := path.Join(path.Dir(s.file.Name), "_rels", path.Base(s.file.Name)+".rels")
		data, err := ooxml.ReadFile(reader, relsName)
		if err != nil {
			continue
		}
		var rels relationships
		if err := xml.Unmarshal(data, &rels); err != nil {
			continue
		}
		for _, r := range rels.Relationships {
			if !strings.HasSuffix(r.Type, "/image") {
				continue
			}
			target := path.Clean(path.Join(path.Dir(s.file.Name), r.Target))
			if _, seen := owners[target]; !seen {
				owners[target] = s.number
			}
		}
	}
	return owners
}
