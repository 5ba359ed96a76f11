package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/wastewise/internal/vision"
	"github.com/JaimeStill/wastewise/pkg/handlers"
	"github.com/JaimeStill/wastewise/pkg/openapi"
	"github.com/JaimeStill/wastewise/pkg/routes"
)

// Handler provides the HTTP endpoint for classifying images.
type Handler struct {
	sys            System
	logger         *slog.Logger
	maxRequestSize int64
}

// NewHandler creates a Handler. Request bodies larger than maxRequestSize
// are rejected with 413; zero disables the limit.
func NewHandler(sys System, logger *slog.Logger, maxRequestSize int64) *Handler {
	return &Handler{
		sys:            sys,
		logger:         logger.With("handler", "classify"),
		maxRequestSize: maxRequestSize,
	}
}

// Routes returns the route group definition for the classify endpoint.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:  "/classify",
		Tags:    []string{"Classify"},
		Schemas: Schemas(),
		Routes: []routes.Route{
			{
				Method:  "POST",
				Pattern: "",
				Handler: h.Classify,
				OpenAPI: &openapi.Operation{
					Summary:     "Classify a waste image",
					Description: "Send imageBase64 (raw or data URI) or imageUrl. Stores one history record per success.",
					RequestBody: openapi.RequestBodyJSON("ClassifyCommand", true),
					Responses: openapi.Responses(
						http.StatusOK,
						openapi.ResponseJSON("Classification with disposal guidance", "ClassifyResponse"),
						map[int]string{
							http.StatusBadRequest:            "BadRequest",
							http.StatusRequestEntityTooLarge: "PayloadTooLarge",
							http.StatusInternalServerError:   "ServerError",
						},
					),
				},
			},
		},
	}
}

// Classify decodes a Command, runs the pipeline, and writes the Response.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	if h.maxRequestSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)
	}

	var cmd Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = fmt.Errorf("%w: limit is %d bytes", ErrPayloadTooLarge, tooLarge.Limit)
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, err)
			return
		}
		err = fmt.Errorf("%w: %w", vision.ErrInvalidInput, err)
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	resp, err := h.sys.Classify(r.Context(), cmd)
	if err != nil {
		status := MapHTTPStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.ErrorContext(r.Context(), "classification failed", "status", status, "error", err)
			handlers.WriteError(w, status, publicError(err))
			return
		}
		handlers.RespondError(w, h.logger, status, publicError(err))
		return
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}

// Schemas returns the OpenAPI component schemas for the classify endpoint.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"ClassifyCommand": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"imageBase64": {Type: "string", Description: "Base64 image bytes or a data URI"},
				"imageUrl":    {Type: "string", Format: "uri"},
			},
		},
		"ClassifyResponse": {
			Type:     "object",
			Required: []string{"classification", "historyId"},
			Properties: map[string]*openapi.Schema{
				"classification": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"id":                   {Type: "string", Format: "uuid"},
						"category":             {Type: "string"},
						"colorCode":            {Type: "string"},
						"description":          {Type: "string"},
						"disposalInstructions": {Type: "string"},
						"environmentalImpact":  {Type: "string"},
						"detectedItems":        openapi.ArrayOf(&openapi.Schema{Type: "string"}),
						"confidence":           {Type: "integer", Description: "Percent, 0 to 100"},
						"reasoning":            {Type: "string"},
					},
				},
				"historyId": {Type: "string", Format: "uuid"},
			},
		},
	}
}
