package api

import (
	"github.com/JaimeStill/wastewise/internal/config"
	"github.com/JaimeStill/wastewise/internal/infrastructure"
	"github.com/JaimeStill/wastewise/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination     pagination.Config
	MaxRequestSize int64
	ArchiveImages  bool
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Cache:     infra.Cache,
			Vision:    infra.Vision,
		},
		Pagination:     cfg.API.Pagination,
		MaxRequestSize: cfg.API.MaxRequestSize.Bytes(),
		ArchiveImages:  cfg.API.ArchiveImages,
	}
}
