package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Provider names
const (
	ProviderOllama       = "ollama"
	ProviderOllamaCLI    = "ollama-cli"
	ProviderOllamaOpenAI = "ollama-openai"
	ProviderOpenAI       = "openai"
	ProviderDeepseek     = "deepseek"
	ProviderGrok         = "grok"
	ProviderGemini       = "gemini"
)

// Unstaged file policies
const (
	UnstagedWarn   = "warn"
	UnstagedBlock  = "block"
	UnstagedIgnore = "ignore"
)

// Normalization strictness levels
const (
	StrictnessStrict = "strict"
	StrictnessQuotes = "quotes"
)

const (
	// DefaultModelName is the profile used when no configuration file exists
	DefaultModelName = "local"
	// DefaultOllamaModel matches the model the panel was first built around
	DefaultOllamaModel = "llama3.2:3b"
	// DefaultOllamaURL is the local Ollama API root
	DefaultOllamaURL = "http://localhost:11434"

	configFileName = ".commitpanel.yaml"
)

// Supported providers; the value reports whether an API key is required
var supportedProviders = map[string]bool{
	ProviderOllama:       false,
	ProviderOllamaCLI:    false,
	ProviderOllamaOpenAI: false,
	ProviderOpenAI:       true,
	ProviderDeepseek:     true,
	ProviderGrok:         true,
	ProviderGemini:       true,
}

// SupportedProviders returns a sorted list of supported providers
func SupportedProviders() []string {
	providers := make([]string, 0, len(supportedProviders))
	for p := range supportedProviders {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers
}

// Config represents the application configuration
type Config struct {
	DefaultModel string                 `yaml:"default_model" mapstructure:"default_model"`
	Models       map[string]ModelConfig `yaml:"models" mapstructure:"models"`
	Generation   *GenerationConfig      `yaml:"generation" mapstructure:"generation"`
	Message      *MessageConfig         `yaml:"message" mapstructure:"message"`
	Policy       *PolicyConfig          `yaml:"policy" mapstructure:"policy"`
	Retry        *RetryConfig           `yaml:"retry" mapstructure:"retry"`
}

// ModelConfig represents a single model profile
type ModelConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider" json:"provider"`
	APIKey   string `yaml:"api_key" mapstructure:"api_key" json:"-"`
	Model    string `yaml:"model" mapstructure:"model" json:"model"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url" json:"base_url,omitempty"`
	Command  string `yaml:"command" mapstructure:"command" json:"command,omitempty"` // ollama-cli only
}

// Validate validates the model configuration
func (m *ModelConfig) Validate() error {
	if m.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	needsKey, ok := supportedProviders[m.Provider]
	if !ok {
		return fmt.Errorf("unsupported provider: %s", m.Provider)
	}
	if m.Model == "" {
		return fmt.Errorf("model is required")
	}
	if needsKey && m.APIKey == "" {
		return fmt.Errorf("api_key is required for provider %s", m.Provider)
	}
	return nil
}

// GenerationConfig controls calls to the inference backend
type GenerationConfig struct {
	Timeout      int  `yaml:"timeout" mapstructure:"timeout"` // in seconds
	Warmup       bool `yaml:"warmup" mapstructure:"warmup"`
	MaxDiffBytes int  `yaml:"max_diff_bytes" mapstructure:"max_diff_bytes"`
}

// MinDiffBytes is the smallest capture buffer accepted for the staged diff
const MinDiffBytes = 1024 * 1024

// DefaultGenerationConfig returns the default generation configuration
func DefaultGenerationConfig() *GenerationConfig {
	return &GenerationConfig{
		Timeout:      60,
		Warmup:       true,
		MaxDiffBytes: MinDiffBytes,
	}
}

// Validate validates the generation configuration
func (g *GenerationConfig) Validate() error {
	if g.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	if g.MaxDiffBytes != 0 && g.MaxDiffBytes < MinDiffBytes {
		return fmt.Errorf("max_diff_bytes must be at least %d", MinDiffBytes)
	}
	return nil
}

// MessageConfig controls prompt bounds and output cleanup
type MessageConfig struct {
	MaxChars    int      `yaml:"max_chars" mapstructure:"max_chars"`
	MinChars    int      `yaml:"min_chars" mapstructure:"min_chars"`
	Strictness  string   `yaml:"strictness" mapstructure:"strictness"`
	CommitTypes []string `yaml:"commit_types" mapstructure:"commit_types"`
}

// DefaultMessageConfig returns the default message configuration
func DefaultMessageConfig() *MessageConfig {
	return &MessageConfig{
		MaxChars:    50,
		MinChars:    5,
		Strictness:  StrictnessStrict,
		CommitTypes: []string{"feature", "fix", "refactor", "docs", "test", "chore", "perf", "style"},
	}
}

// Validate validates the message configuration
func (m *MessageConfig) Validate() error {
	if m.MaxChars < 0 || m.MinChars < 0 {
		return fmt.Errorf("max_chars and min_chars must be non-negative")
	}
	if m.MaxChars > 0 && m.MinChars > m.MaxChars {
		return fmt.Errorf("min_chars must not exceed max_chars")
	}
	switch m.Strictness {
	case "", StrictnessStrict, StrictnessQuotes:
	default:
		return fmt.Errorf("unsupported strictness: %s", m.Strictness)
	}
	return nil
}

// PolicyConfig controls the generate preconditions
type PolicyConfig struct {
	Unstaged      string `yaml:"unstaged" mapstructure:"unstaged"`
	RequireTicket *bool  `yaml:"require_ticket" mapstructure:"require_ticket"`
}

// DefaultPolicyConfig returns the default policy configuration
func DefaultPolicyConfig() *PolicyConfig {
	requireTicket := true
	return &PolicyConfig{
		Unstaged:      UnstagedWarn,
		RequireTicket: &requireTicket,
	}
}

// TicketRequired reports whether an empty ticket blocks generation
func (p *PolicyConfig) TicketRequired() bool {
	return p.RequireTicket == nil || *p.RequireTicket
}

// Validate validates the policy configuration
func (p *PolicyConfig) Validate() error {
	switch p.Unstaged {
	case "", UnstagedWarn, UnstagedBlock, UnstagedIgnore:
		return nil
	default:
		return fmt.Errorf("unsupported unstaged policy: %s", p.Unstaged)
	}
}

// RetryConfig represents the retry configuration.
// Only the warm-up request is retried; generation is single-shot.
type RetryConfig struct {
	Enabled     bool    `yaml:"enabled" mapstructure:"enabled"`
	MaxAttempts int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	BackoffBase float64 `yaml:"backoff_base" mapstructure:"backoff_base"` // in seconds
	BackoffMax  float64 `yaml:"backoff_max" mapstructure:"backoff_max"`   // in seconds
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Enabled:     true,
		MaxAttempts: 2,
		BackoffBase: 1.0,
		BackoffMax:  4.0,
	}
}

// Validate validates the retry configuration
func (r *RetryConfig) Validate() error {
	if r.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must be non-negative")
	}
	if r.BackoffBase < 0 {
		return fmt.Errorf("backoff_base must be non-negative")
	}
	if r.BackoffMax < r.BackoffBase {
		return fmt.Errorf("backoff_max must be greater than or equal to backoff_base")
	}
	return nil
}

// Default returns the configuration used when no file is found:
// a single local Ollama profile with every section at its defaults.
func Default() *Config {
	return &Config{
		DefaultModel: DefaultModelName,
		Models: map[string]ModelConfig{
			DefaultModelName: {
				Provider: ProviderOllama,
				Model:    DefaultOllamaModel,
				BaseURL:  DefaultOllamaURL,
			},
		},
		Generation: DefaultGenerationConfig(),
		Message:    DefaultMessageConfig(),
		Policy:     DefaultPolicyConfig(),
		Retry:      DefaultRetryConfig(),
	}
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if len(c.Models) == 0 {
		return fmt.Errorf("no models configured")
	}

	if c.DefaultModel != "" {
		if _, ok := c.Models[c.DefaultModel]; !ok {
			return fmt.Errorf("default model '%s' not found in models configuration", c.DefaultModel)
		}
	}

	for name, model := range c.Models {
		model.APIKey = expandEnv(model.APIKey)
		if err := model.Validate(); err != nil {
			return fmt.Errorf("invalid model '%s': %w", name, err)
		}
	}

	if c.Generation != nil {
		if err := c.Generation.Validate(); err != nil {
			return fmt.Errorf("invalid generation configuration: %w", err)
		}
	}
	if c.Message != nil {
		if err := c.Message.Validate(); err != nil {
			return fmt.Errorf("invalid message configuration: %w", err)
		}
	}
	if c.Policy != nil {
		if err := c.Policy.Validate(); err != nil {
			return fmt.Errorf("invalid policy configuration: %w", err)
		}
	}
	if c.Retry != nil {
		if err := c.Retry.Validate(); err != nil {
			return fmt.Errorf("invalid retry configuration: %w", err)
		}
	}

	return nil
}

// GetModel returns the model configuration by name
// Priority: parameter > env variable (COMMITPANEL_MODEL) > default_model
func (c *Config) GetModel(modelName string) (*ModelConfig, error) {
	if modelName == "" {
		modelName = os.Getenv("COMMITPANEL_MODEL")
	}
	if modelName == "" {
		modelName = c.DefaultModel
	}
	if modelName == "" {
		return nil, fmt.Errorf("no model specified and no default model configured")
	}

	model, ok := c.Models[modelName]
	if !ok {
		return nil, fmt.Errorf("model '%s' not found in configuration", modelName)
	}

	model.APIKey = expandEnv(model.APIKey)

	return &model, nil
}

// GetGenerationConfig returns the generation configuration with defaults applied
func (c *Config) GetGenerationConfig() *GenerationConfig {
	if c.Generation == nil {
		return DefaultGenerationConfig()
	}
	defaults := DefaultGenerationConfig()
	if c.Generation.Timeout <= 0 {
		c.Generation.Timeout = defaults.Timeout
	}
	if c.Generation.MaxDiffBytes < MinDiffBytes {
		c.Generation.MaxDiffBytes = defaults.MaxDiffBytes
	}
	return c.Generation
}

// GetMessageConfig returns the message configuration with defaults applied
func (c *Config) GetMessageConfig() *MessageConfig {
	if c.Message == nil {
		return DefaultMessageConfig()
	}
	defaults := DefaultMessageConfig()
	if c.Message.MaxChars <= 0 {
		c.Message.MaxChars = defaults.MaxChars
	}
	if c.Message.MinChars <= 0 {
		c.Message.MinChars = defaults.MinChars
	}
	if c.Message.Strictness == "" {
		c.Message.Strictness = defaults.Strictness
	}
	if len(c.Message.CommitTypes) == 0 {
		c.Message.CommitTypes = defaults.CommitTypes
	}
	return c.Message
}

// GetPolicyConfig returns the policy configuration with defaults applied
func (c *Config) GetPolicyConfig() *PolicyConfig {
	if c.Policy == nil {
		return DefaultPolicyConfig()
	}
	if c.Policy.Unstaged == "" {
		c.Policy.Unstaged = UnstagedWarn
	}
	return c.Policy
}

// GetRetryConfig returns the retry configuration with defaults applied
func (c *Config) GetRetryConfig() *RetryConfig {
	if c.Retry == nil {
		return DefaultRetryConfig()
	}
	defaults := DefaultRetryConfig()
	if c.Retry.MaxAttempts < 0 {
		c.Retry.MaxAttempts = defaults.MaxAttempts
	}
	if c.Retry.BackoffBase < 0 {
		c.Retry.BackoffBase = defaults.BackoffBase
	}
	if c.Retry.BackoffMax < 0 {
		c.Retry.BackoffMax = defaults.BackoffMax
	}
	return c.Retry
}

// expandEnv expands environment variables in the format ${VAR} or $VAR
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}

// LoadFromFile loads configuration from a file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultPath returns ~/.commitpanel.yaml
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, configFileName), nil
}

// Load loads configuration with the following priority:
// 1. Custom path if provided
// 2. Current directory .commitpanel.yaml
// 3. Home directory ~/.commitpanel.yaml
// 4. Built-in defaults (local Ollama)
func Load(customPath string) (*Config, error) {
	if customPath != "" {
		return LoadFromFile(customPath)
	}

	candidates := []string{configFileName}
	if homePath, err := DefaultPath(); err == nil {
		candidates = append(candidates, homePath)
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		// An existing but broken file is an error, not a reason to fall back
		return LoadFromFile(path)
	}

	return Default(), nil
}
