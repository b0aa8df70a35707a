// Package imaging holds the uploaded image type together with the local
// quality gate and the transport encoding applied before any model call.
package imaging

import (
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ImageAsset is an uploaded image held in memory for the lifetime of one request.
type ImageAsset struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Size      int64  `json:"size"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Data      []byte `json:"-"`
}

// ReadAsset reads an upload into memory. The declared content type is kept when it
// names an image type, otherwise the type is sniffed from the bytes.
func ReadAsset(name, declaredType string, r io.Reader) (*ImageAsset, error) {
	if r == nil {
		return nil, &EncodingError{Name: name, Err: fmt.Errorf("no image source")}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &EncodingError{Name: name, Err: err}
	}

	return &ImageAsset{
		Name:      name,
		MediaType: resolveMediaType(declaredType, data),
		Size:      int64(len(data)),
		Data:      data,
	}, nil
}

func resolveMediaType(declared string, data []byte) string {
	declared = strings.TrimSpace(strings.ToLower(declared))
	if strings.HasPrefix(declared, "image/") {
		return declared
	}
	detected := mimetype.Detect(data).String()
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = detected[:i]
	}
	return detected
}
