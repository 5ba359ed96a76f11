package categories

import (
	"errors"
	"net/http"
)

var ErrNotFound = errors.New("category not found")

// MapHTTPStatus maps category domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
