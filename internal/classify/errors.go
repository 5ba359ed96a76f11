package classify

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/wastewise/internal/vision"
)

var (
	ErrCategoryNotFound = errors.New("could not find waste category")
	ErrPayloadTooLarge  = errors.New("request body too large")
	ErrClassifyFailed   = errors.New("failed to classify waste")
)

// MapHTTPStatus maps pipeline errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, vision.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// publicError returns the error shown to clients. Client errors keep their
// detail; server errors collapse to their sentinel so storage and driver
// messages are not exposed.
func publicError(err error) error {
	switch {
	case errors.Is(err, ErrPayloadTooLarge), errors.Is(err, vision.ErrInvalidInput):
		return err
	case errors.Is(err, vision.ErrUpstreamUnavailable):
		return vision.ErrUpstreamUnavailable
	case errors.Is(err, ErrCategoryNotFound):
		return ErrCategoryNotFound
	default:
		return ErrClassifyFailed
	}
}
