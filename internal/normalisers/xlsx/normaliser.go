// Package xlsx extracts cell text and images from Excel workbooks.
package xlsx

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
	"github.com/custodia-labs/rfpvault/internal/logger"
	"github.com/custodia-labs/rfpvault/internal/normalisers/ooxml"
)

// Ensure Normaliser implements the interfaces.
var (
	_ driven.Normaliser     = (*Normaliser)(nil)
	_ driven.ImageExtractor = (*Normaliser)(nil)
)

const (
	mediaDir      = "xl/media/"
	cellSeparator = " | "
)

// SheetBanner returns the line that introduces a sheet in extracted text.
func SheetBanner(name string) string {
	return fmt.Sprintf("=== Feuille: %s ===", name)
}

// Normaliser handles XLSX workbooks.
type Normaliser struct{}

// New creates a new XLSX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedFileTypes returns the file types this normaliser handles.
func (n *Normaliser) SupportedFileTypes() []domain.FileType {
	return []domain.FileType{domain.FileTypeXLSX}
}

// Normalise writes every sheet as a banner followed by its non-empty rows,
// cells joined with " | ". Workbooks have no page structure.
func (n *Normaliser) Normalise(_ context.Context, content []byte) (*driven.NormaliseResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", domain.ErrInvalidInput, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Debug("Closing workbook: %v", err)
		}
	}()

	var parts []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		parts = append(parts, "\n"+SheetBanner(sheet)+"\n")
		for _, row := range rows {
			if line := joinRow(row); line != "" {
				parts = append(parts, line)
			}
		}
	}

	return &driven.NormaliseResult{Text: strings.Join(parts, "\n")}, nil
}

// ExtractImages returns the workbook media images.
func (n *Normaliser) ExtractImages(_ context.Context, content []byte, minSize int) ([]domain.ExtractedImage, error) {
	reader, err := ooxml.Open(content)
	if err != nil {
		return nil, err
	}
	return ooxml.MediaImages(reader, mediaDir, minSize, nil), nil
}

// joinRow joins the non-empty cells of a row.
func joinRow(row []string) string {
	cells := make([]string, 0, len(row))
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			cells = append(cells, cell)
		}
	}
	return strings.Join(cells, cellSeparator)
}
