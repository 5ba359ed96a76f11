package categories

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/wastewise/pkg/handlers"
	"github.com/JaimeStill/wastewise/pkg/openapi"
	"github.com/JaimeStill/wastewise/pkg/routes"
)

// Handler provides HTTP endpoints for category lookups.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "categories"),
	}
}

// Routes returns the route group definition for category endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:  "/categories",
		Tags:    []string{"Categories"},
		Schemas: Schemas(),
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "",
				Handler: h.List,
				OpenAPI: &openapi.Operation{
					Summary: "List waste categories ordered by name",
					Responses: openapi.Responses(
						http.StatusOK,
						&openapi.Response{
							Description: "All categories",
							Content: map[string]*openapi.MediaType{
								"application/json": {Schema: openapi.DataOf(openapi.ArrayOf(openapi.SchemaRef("Category")))},
							},
						},
						map[int]string{http.StatusInternalServerError: "ServerError"},
					),
				},
			},
			{
				Method:  "GET",
				Pattern: "/{id}",
				Handler: h.Find,
				OpenAPI: &openapi.Operation{
					Summary:    "Get a waste category",
					Parameters: []*openapi.Parameter{openapi.PathParam("id", "Category ID")},
					Responses: openapi.Responses(
						http.StatusOK,
						openapi.ResponseData("The category", "Category"),
						map[int]string{
							http.StatusNotFound:            "NotFound",
							http.StatusInternalServerError: "ServerError",
						},
					),
				},
			},
		},
	}
}

// List returns every category.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.sys.List(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondData(w, http.StatusOK, items)
}

// Find returns a single category by its UUID path parameter. A malformed
// id cannot name a category and is reported as not found.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNotFound)
		return
	}

	c, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondData(w, http.StatusOK, c)
}

// Schemas returns the OpenAPI component schemas for the categories domain.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Category": {
			Type: "object",
			Required: []string{
				"id", "name", "color_code", "description",
				"disposal_instructions", "environmental_impact", "created_at",
			},
			Properties: map[string]*openapi.Schema{
				"id":                    {Type: "string", Format: "uuid"},
				"name":                  {Type: "string", Example: "Plastic"},
				"color_code":            {Type: "string", Example: "#2196F3"},
				"description":           {Type: "string"},
				"disposal_instructions": {Type: "string"},
				"environmental_impact":  {Type: "string"},
				"created_at":            {Type: "string", Format: "date-time"},
			},
		},
	}
}
