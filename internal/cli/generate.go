package cli

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/huimingz/commitpanel/internal/message"
	"github.com/huimingz/commitpanel/internal/panel"
	"github.com/huimingz/commitpanel/internal/ui"
	"github.com/spf13/cobra"
)

var (
	generateType    string
	generateTicket  string
	generateAutoYes bool
	generateCopy    bool
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Generate a commit message and commit",
	Long: `Generate a commit message for the staged changes without opening the panel.

This command will:
1. Check the backend, the model and the repository
2. Send the staged diff (git diff --cached) to the model
3. Show the message as TICKET:TYPE: title
4. Ask for confirmation before committing

Examples:
  commitpanel generate --ticket JIRA-123
  commitpanel generate -t fix -k T-9 --yes
  commitpanel generate -k T-9 --copy -m remote`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateType, "type", "t", string(message.DefaultCommitType()), "Commit type (feature, fix, refactor, docs, test, chore, perf, style)")
	generateCmd.Flags().StringVarP(&generateTicket, "ticket", "k", "", "Ticket identifier used as the message prefix")
	generateCmd.Flags().BoolVarP(&generateAutoYes, "yes", "y", false, "Commit without prompting")
	generateCmd.Flags().BoolVar(&generateCopy, "copy", false, "Copy the message to the clipboard")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd.Context())
	out := cmd.OutOrStdout()

	s, err := newSession(ctx)
	if err != nil {
		return err
	}

	surface := ui.NewConsoleSurface(out)
	controller := s.controller(surface)

	surface.StartSpinner("Generating commit message...")
	err = controller.Generate(ctx, panel.GenerateEvent{
		CommitType: message.ParseCommitType(generateType).String(),
		TicketID:   generateTicket,
	})
	surface.StopSpinner()
	// the controller prints every failure through the surface
	if err != nil {
		return reported(fmt.Errorf("generate: %w", err))
	}

	result, ok := surface.Result()
	if !ok {
		return fmt.Errorf("no commit message generated")
	}

	if err := ui.ShowCommitMessage(result.Message, out); err != nil {
		return err
	}
	_ = surface.Printer().PrintDuration(result.DurationSeconds)

	if generateCopy {
		if err := clipboard.WriteAll(result.Message); err != nil {
			_ = surface.Printer().PrintWarning(fmt.Sprintf("Could not copy to clipboard: %v", err))
		} else {
			_ = surface.Printer().PrintSuccess("Copied to clipboard")
		}
	}

	if !generateAutoYes {
		confirmed, err := ui.ConfirmWithDefault("\nDo you want to commit with this message?", true, cmd.InOrStdin(), out)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(out, "Commit cancelled.")
			return nil
		}
	}

	return reported(controller.Commit(ctx, panel.CommitEvent{Message: result.Message}))
}
