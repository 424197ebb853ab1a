package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/huimingz/commitpanel/internal/config"
	"github.com/huimingz/commitpanel/internal/llm"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect model profiles",
	Long:  `Commands for listing configured model profiles and locally installed models.`,
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured models",
	Long: `List the model profiles from the configuration file, then the models
reported by the selected local backend (Ollama) when it can enumerate them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd.Context())

		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		out := cmd.OutOrStdout()
		printProfiles(out, cfg)

		_, probe, err := llm.NewBackendFromConfig(ctx, cfg, modelName)
		if err != nil {
			return err
		}
		printLocalModels(ctx, out, probe)
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	rootCmd.AddCommand(modelsCmd)
}

func printProfiles(out io.Writer, cfg *config.Config) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	names := make([]string, 0, len(cfg.Models))
	for name := range cfg.Models {
		names = append(names, name)
	}
	sort.Strings(names)

	bold.Fprintln(out, "Configured Models:")
	fmt.Fprintln(out)

	for _, name := range names {
		model := cfg.Models[name]
		if name == cfg.DefaultModel {
			green.Fprintf(out, "  ✓ %s (default)\n", name)
		} else {
			fmt.Fprintf(out, "    %s\n", name)
		}

		cyan.Fprintf(out, "      Provider: %s\n", model.Provider)
		cyan.Fprintf(out, "      Model:    %s\n", model.Model)
		if model.BaseURL != "" {
			cyan.Fprintf(out, "      Base URL: %s\n", model.BaseURL)
		}
		if model.Command != "" {
			cyan.Fprintf(out, "      Command:  %s\n", model.Command)
		}
		fmt.Fprintln(out)
	}
}

func printLocalModels(ctx context.Context, out io.Writer, probe llm.Probe) {
	lister, ok := probe.(llm.ModelLister)
	if !ok {
		return
	}

	names, err := lister.ListModels(ctx)
	if err != nil {
		color.New(color.FgYellow).Fprintf(out, "Could not list local models: %v\n", err)
		return
	}

	color.New(color.Bold).Fprintln(out, "Local Models:")
	if len(names) == 0 {
		fmt.Fprintln(out, "    (none)")
		return
	}
	for _, name := range names {
		fmt.Fprintf(out, "    %s\n", name)
	}
}
