package ooxml

import (
	"archive/zip"
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

// pngBytes encodes a blank w x h PNG.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func archive(t *testing.T, files map[string][]byte) *zip.Reader {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	r, err := Open(buf.Bytes())
	require.NoError(t, err)
	return r
}

func TestOpen_Invalid(t *testing.T) {
	_, err := Open([]byte("not a zip"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReadFile(t *testing.T) {
	r := archive(t, map[string][]byte{"word/document.xml": []byte("<doc/>")})

	data, err := ReadFile(r, "word/document.xml")
	require.NoError(t, err)
	assert.Equal(t, "<doc/>", string(data))

	_, err = ReadFile(r, "missing.xml")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMediaImages(t *testing.T) {
	r := archive(t, map[string][]byte{
		"ppt/media/image1.png":  pngBytes(t, 120, 80),
		"ppt/media/image2.PNG":  pngBytes(t, 30, 200),
		"ppt/media/broken.jpeg": []byte("nope"),
		"ppt/slides/slide1.xml": []byte("<x/>"),
	})

	images := MediaImages(r, "ppt/media/", 50, func(name string) int {
		if name == "ppt/media/image1.png" {
			return 3
		}
		return 0
	})

	require.Len(t, images, 1)
	assert.Equal(t, "png", images[0].Ext)
	assert.Equal(t, 120, images[0].Width)
	assert.Equal(t, 80, images[0].Height)
	assert.Equal(t, 3, images[0].PageNumber)
	assert.NotEmpty(t, images[0].Data)
}

func TestExt(t *testing.T) {
	assert.Equal(t, "jpg", Ext("word/media/image1.JPEG"))
	assert.Equal(t, "png", Ext("image.png"))
	assert.Equal(t, "", Ext("noext"))
}
