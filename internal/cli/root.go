package cli

import (
	"github.com/huimingz/commitpanel/internal/log"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	debugMode  bool
	configFile string
	modelName  string

	// Version info
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

// rootCmd opens the interactive panel when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "commitpanel",
	Short: "Generate commit messages from staged changes with a local LLM",
	Long: `CommitPanel sends your staged diff to a language model (a local Ollama by default)
and lets you review, edit and commit the suggested single-line message.

Running commitpanel with no subcommand opens the interactive panel.

Use "commitpanel [command] --help" for more information about a command.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugMode {
			log.SetDebugMode(true)
			log.Debug("Debug mode enabled")
		}
	},
	RunE: runPanel,
}

// Root returns the root command
func Root() *cobra.Command {
	return rootCmd
}

// SetVersionInfo sets version information from build flags
func SetVersionInfo(v, commit, time string) {
	version = v
	gitCommit = commit
	buildTime = time
}

// GetVersionInfo returns version information
func GetVersionInfo() (string, string, string) {
	return version, gitCommit, buildTime
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode for verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path (default: ./.commitpanel.yaml, then ~/.commitpanel.yaml)")
	rootCmd.PersistentFlags().StringVarP(&modelName, "model", "m", "", "Model profile to use (overrides config and COMMITPANEL_MODEL)")
}
