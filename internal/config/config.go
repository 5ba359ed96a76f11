// Package config loads service configuration from TOML files and
// WASTEWISE_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/wastewise/internal/vision"
	"github.com/JaimeStill/wastewise/pkg/cache"
	"github.com/JaimeStill/wastewise/pkg/database"
	"github.com/JaimeStill/wastewise/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvWasteWiseEnv             = "WASTEWISE_ENV"
	EnvWasteWiseShutdownTimeout = "WASTEWISE_SHUTDOWN_TIMEOUT"
	EnvWasteWiseVersion         = "WASTEWISE_VERSION"
)

var databaseEnv = &database.Env{
	URL:             "WASTEWISE_DB_URL",
	Host:            "WASTEWISE_DB_HOST",
	Port:            "WASTEWISE_DB_PORT",
	Name:            "WASTEWISE_DB_NAME",
	User:            "WASTEWISE_DB_USER",
	Password:        "WASTEWISE_DB_PASSWORD",
	SSLMode:         "WASTEWISE_DB_SSL_MODE",
	MaxOpenConns:    "WASTEWISE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "WASTEWISE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "WASTEWISE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "WASTEWISE_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:              "WASTEWISE_STORAGE_PROVIDER",
	Container:             "WASTEWISE_STORAGE_CONTAINER",
	AzureConnectionString: "WASTEWISE_STORAGE_AZURE_CONNECTION_STRING",
	AzureAccountURL:       "WASTEWISE_STORAGE_AZURE_ACCOUNT_URL",
	S3Region:              "WASTEWISE_STORAGE_S3_REGION",
	S3Endpoint:            "WASTEWISE_STORAGE_S3_ENDPOINT",
	S3UsePathStyle:        "WASTEWISE_STORAGE_S3_USE_PATH_STYLE",
}

var cacheEnv = &cache.Env{
	URL:    "WASTEWISE_CACHE_URL",
	TTL:    "WASTEWISE_CACHE_TTL",
	Prefix: "WASTEWISE_CACHE_PREFIX",
}

var visionEnv = &vision.Env{
	Provider:  "WASTEWISE_VISION_PROVIDER",
	Model:     "WASTEWISE_VISION_MODEL",
	BaseURL:   "WASTEWISE_VISION_BASE_URL",
	APIKey:    "WASTEWISE_VISION_API_KEY",
	MaxTokens: "WASTEWISE_VISION_MAX_TOKENS",
}

// Config is the root configuration for the WasteWise service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Cache           cache.Config    `toml:"cache"`
	Vision          vision.Config   `toml:"vision"`
	API             APIConfig       `toml:"api"`
	Log             LogConfig       `toml:"log"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`

	// Agent is derived from Vision by FinalizeAgent when the vision
	// provider is served through go-agents.
	Agent gaconfig.AgentConfig `toml:"-"`
}

// Env returns the WASTEWISE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvWasteWiseEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	return LoadFrom(BaseConfigFile)
}

// LoadFrom is Load with an explicit base config path. The overlay is looked
// up next to the base file.
func LoadFrom(base string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(base); err == nil {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(base); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Cache.Merge(&overlay.Cache)
	c.Vision.Merge(&overlay.Vision)
	c.API.Merge(&overlay.API)
	c.Log.Merge(&overlay.Log)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Cache.Finalize(cacheEnv); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Vision.Finalize(visionEnv); err != nil {
		return fmt.Errorf("vision: %w", err)
	}
	if c.Vision.Provider != vision.ProviderAnthropic {
		if err := FinalizeAgent(&c.Agent, &c.Vision); err != nil {
			return fmt.Errorf("agent: %w", err)
		}
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Log.Finalize(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if c.API.ArchiveImages && !c.Storage.Enabled() {
		return fmt.Errorf("api: archive_images requires a storage provider")
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvWasteWiseShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvWasteWiseVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath(base string) string {
	env := os.Getenv(EnvWasteWiseEnv)
	if env == "" {
		return ""
	}

	path := filepath.Join(filepath.Dir(base), fmt.Sprintf(OverlayConfigPattern, env))
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
