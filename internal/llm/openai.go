package llm

import (
	"context"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/huimingz/commitpanel/internal/config"
)

// Default base URLs for the OpenAI-compatible providers
const (
	DeepseekDefaultBaseURL     = "https://api.deepseek.com/v1"
	GrokDefaultBaseURL         = "https://api.x.ai/v1"
	OllamaOpenAIDefaultBaseURL = "http://localhost:11434/v1"
)

var openAIDefaultBaseURLs = map[string]string{
	config.ProviderDeepseek:     DeepseekDefaultBaseURL,
	config.ProviderGrok:         GrokDefaultBaseURL,
	config.ProviderOllamaOpenAI: OllamaOpenAIDefaultBaseURL,
}

// OpenAICompatibleProvider serves openai, deepseek, grok and Ollama's /v1 endpoint
type OpenAICompatibleProvider struct {
	cfg     config.ModelConfig
	timeout time.Duration
}

// NewOpenAICompatibleProvider fills in the provider's default base URL and,
// for a local Ollama, a placeholder API key
func NewOpenAICompatibleProvider(cfg config.ModelConfig, timeout time.Duration) *OpenAICompatibleProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = openAIDefaultBaseURLs[cfg.Provider]
	}
	if cfg.Provider == config.ProviderOllamaOpenAI && cfg.APIKey == "" {
		cfg.APIKey = "ollama"
	}
	return &OpenAICompatibleProvider{cfg: cfg, timeout: timeout}
}

// Name returns the provider name
func (p *OpenAICompatibleProvider) Name() string {
	return p.cfg.Provider
}

// GetConfig returns the model configuration
func (p *OpenAICompatibleProvider) GetConfig() config.ModelConfig {
	return p.cfg
}

// CreateChatModel creates an Eino ChatModel for the configured endpoint
func (p *OpenAICompatibleProvider) CreateChatModel(ctx context.Context) (model.ChatModel, error) {
	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  p.cfg.APIKey,
		Model:   p.cfg.Model,
		BaseURL: p.cfg.BaseURL,
		Timeout: p.timeout,
	})
}
