package formatting

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrInvalidImage is returned when an inline image payload cannot be decoded
// or is not one of the supported image types.
var ErrInvalidImage = errors.New("invalid inline image")

var supportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// SupportedImageType reports whether mediaType is jpeg, png, gif or webp.
func SupportedImageType(mediaType string) bool {
	return supportedImageTypes[mediaType]
}

// InlineImage is a decoded inline image with its detected media type.
type InlineImage struct {
	MediaType string
	Data      []byte
}

// Base64 returns the standard base64 encoding of the image bytes.
func (i InlineImage) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURI returns the image as a data URI.
func (i InlineImage) DataURI() string {
	return "data:" + i.MediaType + ";base64," + i.Base64()
}

// Extension returns the file extension for the image's media type.
func (i InlineImage) Extension() string {
	switch i.MediaType {
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return "jpg"
	}
}

// DecodeImage accepts raw base64 or a "data:<type>;base64,<payload>" URI.
// Without a prefix the media type is sniffed from the decoded bytes. Declared
// or sniffed types other than jpeg, png, gif and webp are rejected.
func DecodeImage(s string) (InlineImage, error) {
	s = strings.TrimSpace(s)
	mediaType := ""

	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		header, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(header, ";base64") {
			return InlineImage{}, fmt.Errorf("%w: malformed data URI", ErrInvalidImage)
		}
		mediaType, _, _ = strings.Cut(header, ";")
		mediaType = strings.ToLower(strings.TrimSpace(mediaType))
		if !SupportedImageType(mediaType) {
			return InlineImage{}, fmt.Errorf("%w: unsupported media type %q", ErrInvalidImage, mediaType)
		}
		s = payload
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return InlineImage{}, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return InlineImage{}, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}

	if mediaType == "" {
		mediaType = http.DetectContentType(data)
		if !SupportedImageType(mediaType) {
			return InlineImage{}, fmt.Errorf("%w: unsupported media type %q", ErrInvalidImage, mediaType)
		}
	}

	return InlineImage{MediaType: mediaType, Data: data}, nil
}
