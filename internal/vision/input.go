package vision

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/JaimeStill/wastewise/pkg/formatting"
)

// Input is the image to classify. When both sources are set the inline
// image is sent to the model and URL is only kept for the record.
type Input struct {
	Image *formatting.InlineImage
	URL   string
}

// NewInput decodes an inline base64 image (raw or data URI) and validates
// the remote URL. At least one source is required.
func NewInput(imageBase64, imageURL string) (Input, error) {
	imageBase64 = strings.TrimSpace(imageBase64)
	imageURL = strings.TrimSpace(imageURL)

	var in Input

	if imageBase64 != "" {
		img, err := formatting.DecodeImage(imageBase64)
		if err != nil {
			return Input{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		in.Image = &img
	}

	if imageURL != "" {
		u, err := url.Parse(imageURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return Input{}, fmt.Errorf("%w: imageUrl must be an absolute http(s) URL", ErrInvalidInput)
		}
		in.URL = imageURL
	}

	if err := in.Validate(); err != nil {
		return Input{}, err
	}
	return in, nil
}

// Validate reports ErrInvalidInput when no image source is set.
func (in Input) Validate() error {
	if in.Image == nil && in.URL == "" {
		return ErrInvalidInput
	}
	return nil
}

// Inline reports whether the inline image is the source sent to the model.
func (in Input) Inline() bool {
	return in.Image != nil
}

// Source returns the image reference sent to the model: a data URI for
// inline images, otherwise the remote URL.
func (in Input) Source() string {
	if in.Image != nil {
		return in.Image.DataURI()
	}
	return in.URL
}
