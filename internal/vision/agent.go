package vision

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// agentProvider delegates to a go-agents agent. The system prompt lives in
// the agent config, so Request.System is not sent.
type agentProvider struct {
	agent agent.Agent
	name  string
	model string
}

func newAgentProvider(cfg *gaconfig.AgentConfig) (*agentProvider, error) {
	if cfg == nil || cfg.Provider == nil || cfg.Model == nil {
		return nil, fmt.Errorf("agent config not finalized")
	}

	a, err := agent.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}

	return &agentProvider{
		agent: a,
		name:  cfg.Provider.Name,
		model: cfg.Model.Name,
	}, nil
}

func (p *agentProvider) Name() string  { return p.name }
func (p *agentProvider) Model() string { return p.model }

func (p *agentProvider) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := p.agent.Vision(ctx, req.Prompt, []string{req.Image.Source()})
	if err != nil {
		return "", fmt.Errorf("%s vision: %w", p.name, err)
	}
	return resp.Content(), nil
}
