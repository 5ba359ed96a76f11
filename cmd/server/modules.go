package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JaimeStill/wastewise/internal/api"
	"github.com/JaimeStill/wastewise/internal/config"
	"github.com/JaimeStill/wastewise/internal/infrastructure"
	"github.com/JaimeStill/wastewise/pkg/module"
)

// Modules holds the prefix-mounted HTTP modules.
type Modules struct {
	API *module.Module
}

// NewModules creates every module served by the process.
func NewModules(ctx context.Context, infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(ctx, cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

// Mount registers every module on router.
func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]any{"status": "ok"})
	}))

	router.HandleNative("GET /readyz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			writeStatus(w, http.StatusServiceUnavailable, map[string]any{"status": "not ready"})
			return
		}

		checks, healthy := infra.Lifecycle.Probe(r.Context())
		if !healthy {
			writeStatus(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "checks": checks})
			return
		}
		writeStatus(w, http.StatusOK, map[string]any{"status": "ready", "checks": checks})
	}))

	router.HandleNative("GET /metrics", promhttp.Handler())

	return router
}

func writeStatus(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
