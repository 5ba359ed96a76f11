package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/wastewise/pkg/auth"
	"github.com/JaimeStill/wastewise/pkg/formatting"
	"github.com/JaimeStill/wastewise/pkg/middleware"
	"github.com/JaimeStill/wastewise/pkg/openapi"
	"github.com/JaimeStill/wastewise/pkg/pagination"
)

const (
	EnvAPIBasePath       = "WASTEWISE_API_BASE_PATH"
	EnvAPIMaxRequestSize = "WASTEWISE_API_MAX_REQUEST_SIZE"
	EnvAPIArchiveImages  = "WASTEWISE_API_ARCHIVE_IMAGES"

	defaultMaxRequestSize = 15 * 1024 * 1024
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "WASTEWISE_CORS_ENABLED",
	Origins:          "WASTEWISE_CORS_ORIGINS",
	AllowedMethods:   "WASTEWISE_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "WASTEWISE_CORS_ALLOWED_HEADERS",
	AllowCredentials: "WASTEWISE_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "WASTEWISE_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultLimit: "WASTEWISE_PAGINATION_DEFAULT_LIMIT",
	MaxLimit:     "WASTEWISE_PAGINATION_MAX_LIMIT",
}

var authEnv = &auth.Env{
	Enabled:  "WASTEWISE_AUTH_ENABLED",
	Issuer:   "WASTEWISE_AUTH_ISSUER",
	ClientID: "WASTEWISE_AUTH_CLIENT_ID",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "WASTEWISE_OPENAPI_TITLE",
	Description: "WASTEWISE_OPENAPI_DESCRIPTION",
}

// APIConfig holds API routing, request limits, and the nested CORS,
// pagination, auth, and OpenAPI settings.
type APIConfig struct {
	BasePath       string                `toml:"base_path"`
	MaxRequestSize formatting.Size       `toml:"max_request_size"`
	ArchiveImages  bool                  `toml:"archive_images"`
	CORS           middleware.CORSConfig `toml:"cors"`
	Pagination     pagination.Config     `toml:"pagination"`
	Auth           auth.Config           `toml:"auth"`
	OpenAPI        openapi.Config        `toml:"openapi"`
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}

	if c.MaxRequestSize <= 0 {
		return fmt.Errorf("invalid max_request_size: %s", c.MaxRequestSize)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxRequestSize != 0 {
		c.MaxRequestSize = overlay.MaxRequestSize
	}
	if overlay.ArchiveImages {
		c.ArchiveImages = true
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.Auth.Merge(&overlay.Auth)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxRequestSize == 0 {
		c.MaxRequestSize = defaultMaxRequestSize
	}
}

func (c *APIConfig) loadEnv() error {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxRequestSize); v != "" {
		size, err := formatting.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAPIMaxRequestSize, err)
		}
		c.MaxRequestSize = size
	}
	if v := os.Getenv(EnvAPIArchiveImages); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.ArchiveImages = b
		}
	}
	return nil
}
