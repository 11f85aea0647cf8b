package task

import (
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
)

var ErrNotImage = errors.New("attachment must be an image")

// EncodeImage reads an uploaded file into a data: URL. Files larger than
// limit bytes fail with the ImageTooLarge validation error. The declared
// content type is trusted only when it is an image type; otherwise the
// bytes are sniffed.
func EncodeImage(r io.Reader, contentType string, limit int) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return "", err
	}
	if len(b) > limit {
		return "", imageTooLarge(limit)
	}
	if len(b) == 0 {
		return "", nil
	}

	mt := mediaType(contentType)
	if !strings.HasPrefix(mt, "image/") {
		mt = mediaType(http.DetectContentType(b))
	}
	if !strings.HasPrefix(mt, "image/") {
		return "", ErrNotImage
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(b), nil
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(mt)
}
