package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/huimingz/commitpanel/internal/config"
)

// ProviderFactory creates chat providers based on configuration
type ProviderFactory struct {
	timeout time.Duration
}

// NewProviderFactory creates a new ProviderFactory; timeout applies to the HTTP transport
func NewProviderFactory(timeout time.Duration) *ProviderFactory {
	return &ProviderFactory{timeout: timeout}
}

// Create creates a Provider for the chat-style providers
func (f *ProviderFactory) Create(cfg config.ModelConfig) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, config.ProviderDeepseek, config.ProviderGrok, config.ProviderOllamaOpenAI:
		return NewOpenAICompatibleProvider(cfg, f.timeout), nil
	case config.ProviderGemini:
		return NewGeminiProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", cfg.Provider)
	}
}

// NewBackend builds the Backend and matching Probe for a model profile
func (f *ProviderFactory) NewBackend(ctx context.Context, cfg config.ModelConfig) (Backend, Probe, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = config.DefaultOllamaURL
		}
		backend, err := NewOllamaBackend(baseURL, cfg.Model, &http.Client{Timeout: f.timeout})
		if err != nil {
			return nil, nil, err
		}
		return backend, NewHTTPProbe(backend, cfg.Model), nil

	case config.ProviderOllamaCLI:
		return NewProcessBackend(cfg.Command, cfg.Model), NewCLIProbe(cfg.Command, cfg.Model), nil
	}

	provider, err := f.Create(cfg)
	if err != nil {
		return nil, nil, err
	}
	chatModel, err := provider.CreateChatModel(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s chat model: %w", provider.Name(), err)
	}
	return NewChatBackend(provider.Name(), chatModel), StaticProbe{}, nil
}

// NewBackendFromConfig resolves the model profile by name and builds its backend
func NewBackendFromConfig(ctx context.Context, appCfg *config.Config, modelName string) (Backend, Probe, error) {
	modelCfg, err := appCfg.GetModel(modelName)
	if err != nil {
		return nil, nil, err
	}
	timeout := time.Duration(appCfg.GetGenerationConfig().Timeout) * time.Second
	return NewProviderFactory(timeout).NewBackend(ctx, *modelCfg)
}
