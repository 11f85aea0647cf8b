package task

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestEncodeImage_DataURL(t *testing.T) {
	got, err := EncodeImage(bytes.NewReader(pngHeader), "image/png", 1024)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(pngHeader), got)
}

func TestEncodeImage_SniffsWhenTypeMissing(t *testing.T) {
	got, err := EncodeImage(bytes.NewReader(pngHeader), "application/octet-stream", 1024)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "data:image/png;base64,"))
}

func TestEncodeImage_RejectsNonImage(t *testing.T) {
	_, err := EncodeImage(strings.NewReader("hello, world"), "text/plain", 1024)
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestEncodeImage_RejectsOversize(t *testing.T) {
	_, err := EncodeImage(bytes.NewReader(make([]byte, 2049)), "image/png", 2048)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestEncodeImage_EmptyFileMeansNoImage(t *testing.T) {
	got, err := EncodeImage(bytes.NewReader(nil), "image/png", 2048)
	require.NoError(t, err)
	assert.Empty(t, got)
}
