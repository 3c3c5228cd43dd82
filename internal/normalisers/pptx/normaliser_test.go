package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/png"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

const slideTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
<p:cSld><p:spTree>%s</p:spTree></p:cSld></p:sld>`

func shape(paragraphs ...string) string {
	out := `<p:sp><p:txBody>`
	for _, p := range paragraphs {
		out += `<a:p><a:r><a:t>` + p + `</a:t></a:r></a:p>`
	}
	return out + `</p:txBody></p:sp>`
}

func slideXML(shapes ...string) []byte {
	return []byte(strings.Replace(slideTemplate, "%s", strings.Join(shapes, ""), 1))
}

func imageRels(targets ...string) []byte {
	out := `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`
	for i, target := range targets {
		out += `<Relationship Id="rId` + strconv.Itoa(i+1) + `" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="` + target + `"/>`
	}
	return []byte(out + `</Relationships>`)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func createTestPPTX(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	for name, data := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, _ = f.Write(data)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestSupportedFileTypes(t *testing.T) {
	assert.Equal(t, []domain.FileType{domain.FileTypePPTX}, New().SupportedFileTypes())
}

func TestNormalise_SlidesArePages(t *testing.T) {
	content := createTestPPTX(t, map[string][]byte{
		"ppt/slides/slide10.xml": slideXML(shape("Planning"), shape("Phase 1", "Phase 2")),
		"ppt/slides/slide2.xml":  slideXML(shape("Notre équipe"), shape("Jean Dupont, chef de projet")),
		"ppt/slides/slide1.xml":  slideXML(shape("Réponse à l'appel d'offres")),
		"ppt/slides/slide3.xml":  slideXML(),
	})

	result, err := New().Normalise(context.Background(), content)

	require.NoError(t, err)
	assert.Equal(t, 4, result.PageCount)
	require.Len(t, result.Pages, 4)

	numbers := []int{result.Pages[0].Number, result.Pages[1].Number, result.Pages[2].Number, result.Pages[3].Number}
	assert.Equal(t, []int{1, 2, 3, 10}, numbers)

	assert.Equal(t, "Notre équipe\nJean Dupont, chef de projet", result.Pages[1].Text)
	assert.Equal(t, []string{"Notre équipe"}, result.Pages[1].SectionTitles)
	assert.Empty(t, result.Pages[2].Text)
	assert.Nil(t, result.Pages[2].SectionTitles)
	assert.Equal(t, "Planning\nPhase 1\nPhase 2", result.Pages[3].Text)
	assert.Contains(t, result.Text, "Réponse à l'appel d'offres\n\nNotre équipe")
}

func TestNormalise_Invalid(t *testing.T) {
	_, err := New().Normalise(context.Background(), []byte("garbage"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = New().Normalise(context.Background(), createTestPPTX(t, map[string][]byte{"word/document.xml": []byte("<x/>")}))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtractImages_PageFromSlideRelationships(t *testing.T) {
	content := createTestPPTX(t, map[string][]byte{
		"ppt/slides/slide1.xml":            slideXML(shape("Titre")),
		"ppt/slides/slide2.xml":            slideXML(shape("Architecture")),
		"ppt/slides/_rels/slide2.xml.rels": imageRels("../media/image1.png"),
		"ppt/media/image1.png":             pngBytes(t, 200, 100),
		"ppt/media/image2.png":             pngBytes(t, 100, 100),
		"ppt/media/icon.png":               pngBytes(t, 16, 16),
	})

	images, err := New().ExtractImages(context.Background(), content, 50)

	require.NoError(t, err)
	require.Len(t, images, 2)
	pages := map[int]int{}
	for _, img := range images {
		pages[img.Width] = img.PageNumber
	}
	assert.Equal(t, 2, pages[200])
	assert.Equal(t, 0, pages[100])
}
