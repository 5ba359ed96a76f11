package vision

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidInput        = errors.New("either imageBase64 or imageUrl is required")
	ErrUpstreamUnavailable = errors.New("failed to classify image")
)

// MapHTTPStatus maps vision errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
