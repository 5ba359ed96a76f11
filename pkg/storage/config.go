package storage

import (
	"fmt"
	"os"
	"strconv"
)

// Provider names accepted in Config.Provider.
const (
	ProviderNone  = ""
	ProviderAzure = "azure"
	ProviderS3    = "s3"
)

// Config selects and configures the blob storage provider.
// An empty Provider disables storage.
type Config struct {
	Provider  string      `toml:"provider"`
	Container string      `toml:"container"`
	Azure     AzureConfig `toml:"azure"`
	S3        S3Config    `toml:"s3"`
}

// AzureConfig authenticates with a connection string, or with the default
// Azure credential chain against AccountURL when no connection string is set.
type AzureConfig struct {
	ConnectionString string `toml:"connection_string"`
	AccountURL       string `toml:"account_url"`
}

// S3Config configures an S3 or S3-compatible endpoint. Credentials come from
// the default AWS credential chain.
type S3Config struct {
	Region       string `toml:"region"`
	Endpoint     string `toml:"endpoint"`
	UsePathStyle bool   `toml:"use_path_style"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider              string
	Container             string
	AzureConnectionString string
	AzureAccountURL       string
	S3Region              string
	S3Endpoint            string
	S3UsePathStyle        string
}

// Enabled reports whether a storage provider is configured.
func (c *Config) Enabled() bool {
	return c.Provider != ProviderNone
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Container != "" {
		c.Container = overlay.Container
	}
	if overlay.Azure.ConnectionString != "" {
		c.Azure.ConnectionString = overlay.Azure.ConnectionString
	}
	if overlay.Azure.AccountURL != "" {
		c.Azure.AccountURL = overlay.Azure.AccountURL
	}
	if overlay.S3.Region != "" {
		c.S3.Region = overlay.S3.Region
	}
	if overlay.S3.Endpoint != "" {
		c.S3.Endpoint = overlay.S3.Endpoint
	}
	if overlay.S3.UsePathStyle {
		c.S3.UsePathStyle = true
	}
}

func (c *Config) loadDefaults() {
	if c.Container == "" {
		c.Container = "wastewise-images"
	}
	if c.S3.Region == "" {
		c.S3.Region = "us-east-1"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(dst *string, key string) {
		if key == "" {
			return
		}
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	set(&c.Provider, env.Provider)
	set(&c.Container, env.Container)
	set(&c.Azure.ConnectionString, env.AzureConnectionString)
	set(&c.Azure.AccountURL, env.AzureAccountURL)
	set(&c.S3.Region, env.S3Region)
	set(&c.S3.Endpoint, env.S3Endpoint)

	if env.S3UsePathStyle != "" {
		if v := os.Getenv(env.S3UsePathStyle); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.S3.UsePathStyle = b
			}
		}
	}
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderNone:
		return nil
	case ProviderAzure:
		if c.Azure.ConnectionString == "" && c.Azure.AccountURL == "" {
			return fmt.Errorf("azure storage requires connection_string or account_url")
		}
	case ProviderS3:
		if c.S3.Region == "" {
			return fmt.Errorf("s3 storage requires region")
		}
	default:
		return fmt.Errorf("unknown storage provider %q", c.Provider)
	}

	if c.Container == "" {
		return fmt.Errorf("container required")
	}
	return nil
}
