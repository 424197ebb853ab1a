package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  ModelConfig
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid ollama config without api key",
			config: ModelConfig{Provider: ProviderOllama, Model: "llama3.2:3b", BaseURL: DefaultOllamaURL},
		},
		{
			name:   "valid ollama-cli config",
			config: ModelConfig{Provider: ProviderOllamaCLI, Model: "llama3.2:3b", Command: "ollama"},
		},
		{
			name:   "valid openai config",
			config: ModelConfig{Provider: ProviderOpenAI, APIKey: "sk-xxx", Model: "gpt-4o"},
		},
		{
			name:    "missing provider",
			config:  ModelConfig{Model: "llama3.2:3b"},
			wantErr: true,
			errMsg:  "provider is required",
		},
		{
			name:    "invalid provider",
			config:  ModelConfig{Provider: "invalid", Model: "x"},
			wantErr: true,
			errMsg:  "unsupported provider",
		},
		{
			name:    "missing model",
			config:  ModelConfig{Provider: ProviderOllama},
			wantErr: true,
			errMsg:  "model is required",
		},
		{
			name:    "missing api key for gemini",
			config:  ModelConfig{Provider: ProviderGemini, Model: "gemini-1.5-flash"},
			wantErr: true,
			errMsg:  "api_key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_GetModel(t *testing.T) {
	cfg := &Config{
		DefaultModel: "local",
		Models: map[string]ModelConfig{
			"local":  {Provider: ProviderOllama, Model: "llama3.2:3b"},
			"remote": {Provider: ProviderOpenAI, APIKey: "${TEST_COMMITPANEL_KEY}", Model: "gpt-4o-mini"},
		},
	}

	t.Run("default model", func(t *testing.T) {
		t.Setenv("COMMITPANEL_MODEL", "")
		model, err := cfg.GetModel("")
		require.NoError(t, err)
		assert.Equal(t, "llama3.2:3b", model.Model)
	})

	t.Run("env variable overrides default", func(t *testing.T) {
		t.Setenv("COMMITPANEL_MODEL", "remote")
		t.Setenv("TEST_COMMITPANEL_KEY", "sk-env")
		model, err := cfg.GetModel("")
		require.NoError(t, err)
		assert.Equal(t, ProviderOpenAI, model.Provider)
		assert.Equal(t, "sk-env", model.APIKey)
	})

	t.Run("parameter wins", func(t *testing.T) {
		t.Setenv("COMMITPANEL_MODEL", "remote")
		model, err := cfg.GetModel("local")
		require.NoError(t, err)
		assert.Equal(t, ProviderOllama, model.Provider)
	})

	t.Run("unknown model", func(t *testing.T) {
		_, err := cfg.GetModel("missing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		assert.NoError(t, Default().Validate())
	})

	t.Run("no models", func(t *testing.T) {
		err := (&Config{}).Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no models configured")
	})

	t.Run("bad unstaged policy", func(t *testing.T) {
		cfg := Default()
		cfg.Policy.Unstaged = "sometimes"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported unstaged policy")
	})

	t.Run("bad strictness", func(t *testing.T) {
		cfg := Default()
		cfg.Message.Strictness = "loose"
		require.Error(t, cfg.Validate())
	})

	t.Run("diff buffer below minimum", func(t *testing.T) {
		cfg := Default()
		cfg.Generation.MaxDiffBytes = 1024
		require.Error(t, cfg.Validate())
	})

	t.Run("min above max", func(t *testing.T) {
		cfg := Default()
		cfg.Message.MinChars = 60
		cfg.Message.MaxChars = 50
		require.Error(t, cfg.Validate())
	})
}

func TestConfig_SectionDefaults(t *testing.T) {
	cfg := &Config{
		Message:    &MessageConfig{MaxChars: 40},
		Generation: &GenerationConfig{},
		Policy:     &PolicyConfig{},
	}

	msg := cfg.GetMessageConfig()
	assert.Equal(t, 40, msg.MaxChars)
	assert.Equal(t, 5, msg.MinChars)
	assert.Equal(t, StrictnessStrict, msg.Strictness)
	assert.NotEmpty(t, msg.CommitTypes)

	gen := cfg.GetGenerationConfig()
	assert.Equal(t, 60, gen.Timeout)
	assert.Equal(t, MinDiffBytes, gen.MaxDiffBytes)

	policy := cfg.GetPolicyConfig()
	assert.Equal(t, UnstagedWarn, policy.Unstaged)
	assert.True(t, policy.TicketRequired())

	retry := cfg.GetRetryConfig()
	assert.Equal(t, 2, retry.MaxAttempts)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `default_model: local
models:
  local:
    provider: ollama
    model: qwen2.5:7b
    base_url: http://127.0.0.1:11434
generation:
  timeout: 30
message:
  max_chars: 40
  strictness: quotes
policy:
  unstaged: block
  require_ticket: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.DefaultModel)
	assert.Equal(t, "qwen2.5:7b", cfg.Models["local"].Model)
	assert.Equal(t, 30, cfg.GetGenerationConfig().Timeout)
	assert.Equal(t, StrictnessQuotes, cfg.GetMessageConfig().Strictness)
	assert.Equal(t, UnstagedBlock, cfg.GetPolicyConfig().Unstaged)
	assert.False(t, cfg.GetPolicyConfig().TicketRequired())
}

func TestLoadFromFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("models:\n  x:\n    provider: nope\n    model: m\n"), 0600))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider")
}

func TestLoad_FallsBackToDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	model, err := cfg.GetModel(DefaultModelName)
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, model.Provider)
	assert.Equal(t, DefaultOllamaModel, model.Model)
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("TEST_EXPAND", "value")
	assert.Equal(t, "value", expandEnv("${TEST_EXPAND}"))
	assert.Equal(t, "value", expandEnv("$TEST_EXPAND"))
	assert.Equal(t, "literal", expandEnv("literal"))
}
