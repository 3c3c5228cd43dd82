// Package pdf extracts text page by page from PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
	"github.com/custodia-labs/rfpvault/internal/logger"
	"github.com/custodia-labs/rfpvault/internal/normalisers/headings"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedFileTypes returns the file types this normaliser handles.
func (n *Normaliser) SupportedFileTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypePDF}
}

// Normalise extracts the text of every page. Pages whose text cannot be
// decoded are kept empty so numbering stays aligned with the document.
func (n *Normaliser) Normalise(ctx context.Context, content []byte) (result *driven.NormaliseResult, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: malformed PDF: %v", domain.ErrInvalidInput, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: open PDF: %v", domain.ErrInvalidInput, err)
	}

	count := reader.NumPage()
	pages := make([]domain.Page, 0, count)
	texts := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text := ""
		page := reader.Page(i)
		if !page.V.IsNull() {
			extracted, err := page.GetPlainText(nil)
			if err != nil {
				logger.Warn("PDF page %d: %v", i, err)
			} else {
				text = extracted
			}
		}
		pages = append(pages, buildPage(i, text))
		texts = append(texts, text)
	}

	return &driven.NormaliseResult{
		Text:      strings.Join(texts, "\n\n"),
		Pages:     pages,
		PageCount: count,
	}, nil
}

// buildPage wraps page text with its heading-like lines.
func buildPage(number int, text string) domain.Page {
	return domain.Page{
		Number:        number,
		Text:          text,
		SectionTitles: headings.Detect(text),
	}
}
