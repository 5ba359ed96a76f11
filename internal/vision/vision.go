// Package vision classifies waste images with a multimodal model.
package vision

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Result is a classification plus the provenance of the model that made it.
// Degraded is set when the response could not be parsed and the fallback
// payload was used.
type Result struct {
	Payload
	Degraded bool
	Model    string
	Provider string
}

// System classifies a single image.
type System interface {
	Classify(ctx context.Context, in Input) (*Result, error)
}

type client struct {
	provider Provider
	logger   *slog.Logger
}

// New creates a vision system backed by provider.
func New(provider Provider, logger *slog.Logger) System {
	return &client{
		provider: provider,
		logger:   logger.With("system", "vision", "provider", provider.Name()),
	}
}

func (c *client) Classify(ctx context.Context, in Input) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	name := c.provider.Name()
	start := time.Now()

	text, err := c.provider.Complete(ctx, Request{
		System: SystemPrompt,
		Prompt: UserPrompt,
		Image:  in,
	})
	requestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		requestsTotal.WithLabelValues(name, "error").Inc()
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	outcome := ParseResponse(text)
	requestsTotal.WithLabelValues(name, outcome.Kind.String()).Inc()

	if outcome.Kind == Fallback {
		c.logger.WarnContext(ctx, "model response not parseable, using fallback",
			"error", outcome.Err,
			"response_length", len(text),
		)
	}

	c.logger.DebugContext(ctx, "image classified",
		"category", outcome.Payload.Category,
		"confidence", outcome.Payload.Confidence,
		"inline", in.Inline(),
		"duration", time.Since(start),
	)

	return &Result{
		Payload:  outcome.Payload,
		Degraded: outcome.Kind == Fallback,
		Model:    c.provider.Model(),
		Provider: name,
	}, nil
}
