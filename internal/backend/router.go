package backend

import (
	"context"
	"fmt"
	"log/slog"
)

// Router selects the provider for a request by model identifier and
// enforces per-provider constraints (the vision override in
// particular). Clients are injected so tests can substitute fakes.
type Router struct {
	openai    Client
	anthropic Client
	logger    *slog.Logger
}

func NewRouter(openaiClient, anthropicClient Client, logger *slog.Logger) *Router {
	return &Router{openai: openaiClient, anthropic: anthropicClient, logger: logger}
}

// Invoke dispatches the request. An attached image forces the
// vision-capable gpt-4o tier regardless of the requested model; an
// unknown model identifier falls back to the default tier.
func (r *Router) Invoke(ctx context.Context, req Request) (string, error) {
	if req.Model == "" {
		req.Model = DefaultModel
	}

	if req.ImageURL != "" && req.Model != ModelGPT4o {
		r.logger.Debug("forcing vision tier for image request", "requested", req.Model)
		req.Model = ModelGPT4o
	}

	switch req.Model {
	case ModelGPT4o, ModelGPT4oMini:
		return r.openai.Invoke(ctx, req)
	case ModelClaude:
		if r.anthropic == nil {
			return "", fmt.Errorf("anthropic tier not configured")
		}
		return r.anthropic.Invoke(ctx, req)
	default:
		r.logger.Warn("unknown model identifier, using default tier", "model", req.Model)
		req.Model = DefaultModel
		return r.openai.Invoke(ctx, req)
	}
}
