// Package handlers provides JSON response helpers shared by domain HTTP handlers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Data wraps a payload in the {"data": ...} envelope used by single-resource
// and collection endpoints.
type Data[T any] struct {
	Data T `json:"data"`
}

// RespondJSON writes data as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondData writes data wrapped in a Data envelope.
func RespondData[T any](w http.ResponseWriter, status int, data T) {
	RespondJSON(w, status, Data[T]{Data: data})
}

// RespondError logs err and writes it as {"error": "<message>"}.
// Server errors log at ERROR, client errors at WARN.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}
	WriteError(w, status, err)
}

// WriteError writes err as {"error": "<message>"} without logging, for
// callers that already logged the underlying cause.
func WriteError(w http.ResponseWriter, status int, err error) {
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}
