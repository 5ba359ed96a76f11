package vision

import (
	"fmt"
	"os"
	"strconv"
)

// Provider names accepted in Config.Provider. Ollama and Azure are served
// through go-agents and need an agent config from config.FinalizeAgent.
const (
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderAzure     = "azure"
)

const (
	defaultAnthropicModel = "claude-sonnet-4-5"
	defaultOllamaBaseURL  = "http://localhost:11434"
	defaultMaxTokens      = 1024
)

// Config selects the multimodal model used for classification. An empty
// APIKey defers to ANTHROPIC_API_KEY for the anthropic provider; for agent
// providers it becomes the go-agents token option. An empty Model on an
// agent provider keeps the go-agents default.
type Config struct {
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	MaxTokens int    `toml:"max_tokens"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider  string
	Model     string
	BaseURL   string
	APIKey    string
	MaxTokens string
}

// Finalize applies environment variable overrides, defaults, and validation.
// Env is applied first so a provider override picks up that provider's
// default model.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	c.loadDefaults()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.MaxTokens != 0 {
		c.MaxTokens = overlay.MaxTokens
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderAnthropic
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = defaultMaxTokens
	}

	switch c.Provider {
	case ProviderAnthropic:
		if c.Model == "" {
			c.Model = defaultAnthropicModel
		}
	case ProviderOllama:
		if c.BaseURL == "" {
			c.BaseURL = defaultOllamaBaseURL
		}
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
	set(&c.Model, env.Model)
	set(&c.BaseURL, env.BaseURL)
	set(&c.APIKey, env.APIKey)

	if env.MaxTokens != "" {
		if v := os.Getenv(env.MaxTokens); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxTokens = n
			}
		}
	}
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderAnthropic, ProviderOllama:
	case ProviderAzure:
		if c.BaseURL == "" {
			return fmt.Errorf("azure provider requires base_url")
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("invalid max_tokens: %d", c.MaxTokens)
	}
	return nil
}
