package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/wastewise/pkg/handlers"
	"github.com/JaimeStill/wastewise/pkg/openapi"
	"github.com/JaimeStill/wastewise/pkg/pagination"
	"github.com/JaimeStill/wastewise/pkg/routes"
)

// Handler provides HTTP endpoints for classification history.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "history"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for history endpoints.
func (h *Handler) Routes() routes.Group {
	errs := map[int]string{
		http.StatusNotFound:            "NotFound",
		http.StatusInternalServerError: "ServerError",
	}
	idParam := []*openapi.Parameter{openapi.PathParam("id", "Classification ID")}

	return routes.Group{
		Prefix:  "/history",
		Tags:    []string{"History"},
		Schemas: Schemas(),
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "",
				Handler: h.List,
				OpenAPI: &openapi.Operation{
					Summary: "List classifications, newest first",
					Parameters: []*openapi.Parameter{
						openapi.QueryParam("limit", "integer", fmt.Sprintf(
							"Page size (default %d, max %d; larger values are capped)",
							h.pagination.DefaultLimit, h.pagination.MaxLimit,
						), false),
						openapi.QueryParam("offset", "integer", "Records to skip", false),
						openapi.QueryParam("sort", "string", "Comma-separated fields, '-' prefix for descending", false),
						openapi.QueryParam("category_id", "string", "Filter by category", false),
						openapi.QueryParam("is_correct", "boolean", "Filter by feedback verdict", false),
					},
					Responses: openapi.Responses(
						http.StatusOK,
						openapi.ResponseJSON("A page of classifications", "RecordPage"),
						map[int]string{http.StatusInternalServerError: "ServerError"},
					),
				},
			},
			{
				Method:  "GET",
				Pattern: "/stats",
				Handler: h.Stats,
				OpenAPI: &openapi.Operation{
					Summary: "Summarize classification history",
					Responses: openapi.Responses(
						http.StatusOK,
						openapi.ResponseData("History statistics", "Stats"),
						map[int]string{http.StatusInternalServerError: "ServerError"},
					),
				},
			},
			{
				Method:  "GET",
				Pattern: "/{id}",
				Handler: h.Find,
				OpenAPI: &openapi.Operation{
					Summary:    "Get a classification",
					Parameters: idParam,
					Responses:  openapi.Responses(http.StatusOK, openapi.ResponseData("The classification", "Record"), errs),
				},
			},
			{
				Method:  "PATCH",
				Pattern: "/{id}",
				Handler: h.Feedback,
				OpenAPI: &openapi.Operation{
					Summary:     "Record feedback on a classification",
					Description: "Only supplied fields change; updated_at is always refreshed.",
					Parameters:  idParam,
					RequestBody: openapi.RequestBodyJSON("FeedbackCommand", false),
					Responses: openapi.Responses(
						http.StatusOK,
						openapi.ResponseData("The updated classification", "Record"),
						map[int]string{
							http.StatusBadRequest:          "BadRequest",
							http.StatusNotFound:            "NotFound",
							http.StatusInternalServerError: "ServerError",
						},
					),
				},
			},
			{
				Method:  "GET",
				Pattern: "/{id}/image",
				Handler: h.Image,
				OpenAPI: &openapi.Operation{
					Summary:    "Download the archived image of a classification",
					Parameters: idParam,
					Responses:  openapi.Responses(http.StatusOK, openapi.ResponseBinary("Image bytes", "image/*"), errs),
				},
			},
		},
	}
}

// List returns a page of classifications with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single classification by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	rec, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondData(w, http.StatusOK, rec)
}

// Feedback applies a FeedbackCommand JSON body. An empty body is a no-op
// update that still refreshes updated_at.
func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var cmd FeedbackCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil && !errors.Is(err, io.EOF) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	rec, err := h.sys.Feedback(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondData(w, http.StatusOK, rec)
}

// Stats returns aggregate counts and accuracy.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.sys.Stats(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondData(w, http.StatusOK, stats)
}

// Image streams the archived image of a classification.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	obj, err := h.sys.Image(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if obj.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, obj.Body); err != nil {
		h.logger.WarnContext(r.Context(), "image stream interrupted", "id", id, "error", err)
	}
}

// pathID parses the id path value. A malformed id cannot name a record
// and is reported as not found.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// Schemas returns the OpenAPI component schemas for the history domain.
func Schemas() map[string]*openapi.Schema {
	record := &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":                    {Type: "string", Format: "uuid"},
			"waste_category_id":     {Type: "string", Format: "uuid"},
			"image_url":             {Type: "string", Description: "Remote image URL or the placeholder base64_image"},
			"image_key":             {Type: openapi.Nullable("string"), Description: "Storage key of the archived image"},
			"detected_items":        openapi.ArrayOf(&openapi.Schema{Type: "string"}),
			"confidence_score":      {Type: "number", Format: "double"},
			"is_correct":            {Type: openapi.Nullable("boolean")},
			"user_feedback":         {Type: openapi.Nullable("string")},
			"model_name":            {Type: "string"},
			"provider_name":         {Type: "string"},
			"created_at":            {Type: "string", Format: "date-time"},
			"updated_at":            {Type: "string", Format: "date-time"},
			"category_name":         {Type: "string"},
			"color_code":            {Type: "string"},
			"description":           {Type: "string"},
			"disposal_instructions": {Type: "string"},
			"environmental_impact":  {Type: "string"},
		},
	}

	return map[string]*openapi.Schema{
		"Record": record,
		"RecordPage": {
			Type:     "object",
			Required: []string{"data", "total", "limit", "offset"},
			Properties: map[string]*openapi.Schema{
				"data":   openapi.ArrayOf(openapi.SchemaRef("Record")),
				"total":  {Type: "integer"},
				"limit":  {Type: "integer"},
				"offset": {Type: "integer"},
			},
		},
		"FeedbackCommand": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"is_correct":    {Type: openapi.Nullable("boolean")},
				"user_feedback": {Type: openapi.Nullable("string")},
			},
		},
		"Stats": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"items_classified": {Type: "integer"},
				"correct":          {Type: "integer"},
				"incorrect":        {Type: "integer"},
				"unrated":          {Type: "integer"},
				"accuracy":         {Type: "number", Description: "Percent of rated records marked correct"},
				"by_category": openapi.ArrayOf(&openapi.Schema{
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"category_id": {Type: "string", Format: "uuid"},
						"category":    {Type: "string"},
						"color_code":  {Type: "string"},
						"count":       {Type: "integer"},
					},
				}),
			},
		},
	}
}
