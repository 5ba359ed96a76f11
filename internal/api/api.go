// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"context"
	"net/http"

	"github.com/JaimeStill/wastewise/internal/config"
	"github.com/JaimeStill/wastewise/internal/infrastructure"
	"github.com/JaimeStill/wastewise/pkg/auth"
	"github.com/JaimeStill/wastewise/pkg/middleware"
	"github.com/JaimeStill/wastewise/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// When auth is enabled the OIDC issuer is contacted to discover its keys.
func NewModule(ctx context.Context, cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg); err != nil {
		return nil, err
	}

	m, err := module.New(cfg.API.BasePath, mux)
	if err != nil {
		return nil, err
	}

	m.Use(middleware.Recover(runtime.Logger))
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	if cfg.API.Auth.Enabled {
		verifier, err := auth.NewVerifier(ctx, &cfg.API.Auth)
		if err != nil {
			return nil, err
		}
		m.Use(auth.Middleware(verifier, runtime.Logger))
	}

	return m, nil
}
