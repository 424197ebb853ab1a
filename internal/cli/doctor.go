package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huimingz/commitpanel/internal/git"
	"github.com/huimingz/commitpanel/internal/llm"
	"github.com/huimingz/commitpanel/internal/ui"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that everything needed to generate a message is in place",
	Long: `Run the same environment checks the panel runs before generating:
the backend is installed, the model is available, the directory is a Git
repository, and there are staged changes. Unstaged files are listed as a warning.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd.Context())

		s, err := newSession(ctx)
		if err != nil {
			return err
		}

		printer := ui.NewPrinter(cmd.OutOrStdout())
		if failed := runChecks(ctx, s.repo, s.probe, printer); failed > 0 {
			return fmt.Errorf("%d check(s) failed", failed)
		}
		_ = printer.PrintSuccess("Ready to generate")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// runChecks prints one line per check and returns the number of failures
func runChecks(ctx context.Context, repo git.Executor, probe llm.Probe, printer *ui.Printer) int {
	checks := []struct {
		name string
		run  func() error
	}{
		{"backend installed", func() error { return probe.Installed(ctx) }},
		{"model available", func() error { return probe.ModelAvailable(ctx) }},
		{"git repository", func() error {
			if !repo.IsRepository(ctx) {
				return errors.New("not a Git repository, run `git init`")
			}
			return nil
		}},
		{"working tree changes", func() error {
			if !repo.HasAnyChanges(ctx) {
				return errors.New("no changes detected")
			}
			return nil
		}},
		{"staged changes", func() error {
			if repo.StagedDiff(ctx) == "" {
				return errors.New("nothing staged, run `git add`")
			}
			return nil
		}},
	}

	failed := 0
	for _, check := range checks {
		err := check.run()
		if err != nil {
			failed++
		}
		_ = printer.PrintCheck(check.name, err)
	}

	if files := repo.UnstagedFiles(ctx); len(files) > 0 {
		_ = printer.PrintWarning(fmt.Sprintf("Unstaged files: %s", strings.Join(files, ", ")))
	}

	return failed
}

