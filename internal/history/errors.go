package history

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound        = errors.New("classification not found")
	ErrNoImage         = errors.New("no archived image for classification")
	ErrUnknownCategory = errors.New("waste category does not exist")
	ErrInvalidFeedback = errors.New("invalid feedback")
)

// MapHTTPStatus maps history domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoImage) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalidFeedback) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
