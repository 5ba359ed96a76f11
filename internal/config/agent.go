package config

import (
	"fmt"
	"os"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/wastewise/internal/vision"
)

const (
	EnvAgentName       = "WASTEWISE_AGENT_NAME"
	EnvAgentDeployment = "WASTEWISE_AGENT_DEPLOYMENT"
	EnvAgentAPIVersion = "WASTEWISE_AGENT_API_VERSION"
	EnvAgentAuthType   = "WASTEWISE_AGENT_AUTH_TYPE"

	defaultAgentName = "wastewise-vision"
)

// FinalizeAgent builds the go-agents config for an agent-backed vision
// provider: go-agents defaults, then the finalized vision settings, then
// WASTEWISE_AGENT_* overrides, then validation.
func FinalizeAgent(c *gaconfig.AgentConfig, v *vision.Config) error {
	loadAgentDefaults(c)
	applyVision(c, v)
	loadAgentEnv(c)
	return validateAgent(c)
}

func loadAgentDefaults(c *gaconfig.AgentConfig) {
	defaults := gaconfig.DefaultAgentConfig()
	defaults.Merge(c)
	*c = defaults

	if c.Provider == nil {
		c.Provider = &gaconfig.ProviderConfig{}
	}
	if c.Provider.Options == nil {
		c.Provider.Options = make(map[string]any)
	}
	if c.Model == nil {
		c.Model = &gaconfig.ModelConfig{}
	}
	if c.Name == "" {
		c.Name = defaultAgentName
	}
}

func applyVision(c *gaconfig.AgentConfig, v *vision.Config) {
	c.SystemPrompt = vision.SystemPrompt
	c.Provider.Name = v.Provider

	if v.BaseURL != "" {
		c.Provider.BaseURL = v.BaseURL
	}
	if v.Model != "" {
		c.Model.Name = v.Model
	}
	if v.APIKey != "" {
		c.Provider.Options["token"] = v.APIKey
	}
}

func loadAgentEnv(c *gaconfig.AgentConfig) {
	if v := os.Getenv(EnvAgentName); v != "" {
		c.Name = v
	}

	setOption := func(envVar, key string) {
		if v := os.Getenv(envVar); v != "" {
			c.Provider.Options[key] = v
		}
	}

	setOption(EnvAgentDeployment, "deployment")
	setOption(EnvAgentAPIVersion, "api_version")
	setOption(EnvAgentAuthType, "auth_type")
}

func validateAgent(c *gaconfig.AgentConfig) error {
	if c.Name == "" {
		return fmt.Errorf("name required")
	}
	if c.Provider.Name == "" {
		return fmt.Errorf("provider name required")
	}
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider base_url required")
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model required")
	}
	if c.Provider.Name == vision.ProviderAzure {
		if _, ok := c.Provider.Options["deployment"]; !ok {
			return fmt.Errorf("azure provider requires %s", EnvAgentDeployment)
		}
	}
	return nil
}
