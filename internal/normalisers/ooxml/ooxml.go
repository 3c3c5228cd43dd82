// Package ooxml holds zip helpers shared by the Office Open XML normalisers.
package ooxml

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"io"
	"path"
	"strings"

	// Registered for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

// maxEntrySize bounds the decompressed size of one archive entry.
const maxEntrySize = 256 << 20

// Open reads content as a zip archive.
func Open(content []byte) (*zip.Reader, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not an office document: %v", domain.ErrInvalidInput, err)
	}
	return reader, nil
}

// ReadFile returns the content of the named entry, or domain.ErrNotFound.
func ReadFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name == name {
			return readEntry(file)
		}
	}
	return nil, fmt.Errorf("%s: %w", name, domain.ErrNotFound)
}

func readEntry(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file.Name, err)
	}
	return data, nil
}

// MediaImages extracts the images stored under mediaDir (e.g. "word/media/").
// Images whose dimensions cannot be decoded or are below minSize in either
// direction are skipped. pageOf maps an entry name to a page number and may
// be nil, in which case every image gets page 0.
func MediaImages(reader *zip.Reader, mediaDir string, minSize int, pageOf func(name string) int) []domain.ExtractedImage {
	images := []domain.ExtractedImage{}
	for _, file := range reader.File {
		if !strings.HasPrefix(file.Name, mediaDir) || file.FileInfo().IsDir() {
			continue
		}
		data, err := readEntry(file)
		if err != nil {
			continue
		}
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil || cfg.Width < minSize || cfg.Height < minSize {
			continue
		}
		page := 0
		if pageOf != nil {
			page = pageOf(file.Name)
		}
		images = append(images, domain.ExtractedImage{
			Data:       data,
			Ext:        Ext(file.Name),
			Width:      cfg.Width,
			Height:     cfg.Height,
			PageNumber: page,
		})
	}
	return images
}

// Ext returns the lower-case extension of name without the dot, with
// "jpeg" normalised to "jpg".
func Ext(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if ext == "jpeg" {
		return "jpg"
	}
	return ext
}
