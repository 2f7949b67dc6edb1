package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/Muhsiinn/Jonas-AI/internal/store"
)

// Factory builds and caches one Provider per model id. It replaces the
// usual process-global client: credentials come in once through Config, and
// every cached provider is wrapped with event logging and retry middleware.
type Factory struct {
	cfg       Config
	eventRepo store.EventRepo

	mu        sync.Mutex
	providers map[string]Provider
}

// NewFactory creates a Factory for the configured backend.
func NewFactory(cfg Config, eventRepo store.EventRepo) (*Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Factory{
		cfg:       cfg,
		eventRepo: eventRepo,
		providers: make(map[string]Provider),
	}, nil
}

// Config returns the factory's configuration.
func (f *Factory) Config() Config {
	return f.cfg
}

// Provider returns the cached provider for the given model id, constructing
// it on first use. An empty model id selects the backend's configured
// default model.
func (f *Factory) Provider(ctx context.Context, model string) (Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.providers[model]; ok {
		return p, nil
	}

	base, err := f.build(ctx, model)
	if err != nil {
		return nil, err
	}

	// Middleware order: caller, timeout, retry, logging, base. The timeout
	// sits outermost so it bounds the call across all retry attempts.
	p := base
	if f.eventRepo != nil {
		p = WithLogging(p, f.eventRepo)
	}
	p = WithRetry(p, f.cfg.Retry)
	p = WithTimeout(p, f.cfg.Timeout)

	f.providers[model] = p
	return p, nil
}

func (f *Factory) build(ctx context.Context, model string) (Provider, error) {
	switch f.cfg.Provider {
	case "openrouter":
		cfg := f.cfg.OpenRouter
		if model != "" {
			cfg.Model = model
		}
		return NewOpenRouterProvider(cfg)
	case "openai":
		cfg := f.cfg.OpenAI
		if model != "" {
			cfg.Model = model
		}
		return NewOpenAIProvider(cfg)
	case "anthropic":
		cfg := f.cfg.Anthropic
		if model != "" {
			cfg.Model = model
		}
		return NewAnthropicProvider(cfg)
	case "gemini":
		cfg := f.cfg.Gemini
		if model != "" {
			cfg.Model = model
		}
		return NewGeminiProvider(ctx, cfg)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", f.cfg.Provider)
	}
}
