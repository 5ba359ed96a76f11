package vision

import (
	"context"
	"fmt"
	"log/slog"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// Request is one multimodal chat call: a system prompt, a user prompt, and
// the image.
type Request struct {
	System string
	Prompt string
	Image  Input
}

// Provider sends a Request to a multimodal model and returns the text of
// the first message content. Implementations do not retry.
type Provider interface {
	Name() string
	Model() string
	Complete(ctx context.Context, req Request) (string, error)
}

// NewProvider builds the provider selected by cfg. Agent-backed providers
// read their settings from agentCfg, which config.FinalizeAgent produces.
func NewProvider(cfg *Config, agentCfg *gaconfig.AgentConfig, logger *slog.Logger) (Provider, error) {
	switch cfg.Provider {
	case ProviderAnthropic:
		return newAnthropic(cfg), nil
	case ProviderOllama, ProviderAzure:
		p, err := newAgentProvider(agentCfg)
		if err != nil {
			return nil, err
		}
		logger.Info("vision agent configured", "provider", p.Name(), "model", p.Model())
		return p, nil
	default:
		return nil, fmt.Errorf("unknown vision provider %q", cfg.Provider)
	}
}
