package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/wastewise/internal/config"
	"github.com/JaimeStill/wastewise/pkg/openapi"
	"github.com/JaimeStill/wastewise/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) error {
	groups := []routes.Group{
		domain.Categories.Handler().Routes(),
		domain.Classify.Handler().Routes(),
		domain.History.Handler().Routes(),
	}

	routes.Register(mux, groups...)

	spec := openapi.NewSpec(&cfg.API.OpenAPI, cfg.Version)
	spec.AddServer(cfg.API.BasePath)
	routes.Describe(spec, groups...)

	specBytes, err := openapi.MarshalJSON(spec)
	if err != nil {
		return fmt.Errorf("marshal openapi spec: %w", err)
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))

	return nil
}
