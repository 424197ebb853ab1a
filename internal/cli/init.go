package cli

import (
	"fmt"
	"os"

	"github.com/huimingz/commitpanel/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const defaultConfigTemplate = `# CommitPanel Configuration File

# Default model profile (must match a key in the models section).
# COMMITPANEL_MODEL or --model override it.
default_model: local

models:
  # Native Ollama API (recommended)
  local:
    provider: ollama
    model: llama3.2:3b
    base_url: http://localhost:11434

  # Ollama through the CLI: runs "ollama run <model>" with the prompt on stdin
  # local-cli:
  #   provider: ollama-cli
  #   model: llama3.2:3b
  #   command: ollama

  # Ollama's OpenAI-compatible endpoint
  # local-openai:
  #   provider: ollama-openai
  #   model: llama3.2:3b
  #   base_url: http://localhost:11434/v1

  # OpenAI
  # openai:
  #   provider: openai
  #   api_key: ${OPENAI_API_KEY}
  #   model: gpt-4o-mini

  # Deepseek
  # deepseek:
  #   provider: deepseek
  #   api_key: ${DEEPSEEK_API_KEY}
  #   model: deepseek-chat

  # xAI Grok
  # grok:
  #   provider: grok
  #   api_key: ${XAI_API_KEY}
  #   model: grok-2

  # Google Gemini
  # gemini:
  #   provider: gemini
  #   api_key: ${GOOGLE_API_KEY}
  #   model: gemini-1.5-flash

generation:
  timeout: 60              # seconds per request
  warmup: true             # load the model when the panel opens
  max_diff_bytes: 1048576  # staged diff capture limit, at least 1 MiB

message:
  max_chars: 50            # ceiling written into the prompt
  min_chars: 5             # shorter results are rejected
  strictness: strict       # strict: letters, digits, spaces, hyphens; quotes: only strip wrapping quotes
  commit_types: [feature, fix, refactor, docs, test, chore, perf, style]

policy:
  unstaged: warn           # warn, block or ignore
  require_ticket: true

# Retries apply to the warm-up request only
retry:
  enabled: true
  max_attempts: 2
  backoff_base: 1.0
  backoff_max: 4.0
`

var (
	initForce bool
	initLocal bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize CommitPanel configuration",
	Long: `Create a default configuration file (~/.commitpanel.yaml, or ./.commitpanel.yaml with --local).

The template points at a local Ollama and lists the other providers commented out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := ".commitpanel.yaml"
		if !initLocal {
			var err error
			if configPath, err = config.DefaultPath(); err != nil {
				return err
			}
		}

		if _, err := os.Stat(configPath); err == nil && !initForce {
			return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", configPath)
		}

		if err := validateTemplate(defaultConfigTemplate); err != nil {
			return err
		}

		if err := os.WriteFile(configPath, []byte(defaultConfigTemplate), 0600); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✅ Configuration file created: %s\n", configPath)
		fmt.Fprintln(out, "\nNext steps:")
		fmt.Fprintln(out, "  1. Pull the model: ollama pull llama3.2:3b")
		fmt.Fprintln(out, "  2. Run 'commitpanel doctor' to check your setup")
		fmt.Fprintln(out, "  3. Stage changes and run 'commitpanel'")

		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing config file")
	initCmd.Flags().BoolVar(&initLocal, "local", false, "Write the config to the current directory")
	rootCmd.AddCommand(initCmd)
}

// validateTemplate checks that a config template parses and passes validation
func validateTemplate(tmpl string) error {
	var cfg config.Config
	if err := yaml.Unmarshal([]byte(tmpl), &cfg); err != nil {
		return fmt.Errorf("invalid config template: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config template: %w", err)
	}
	return nil
}
